package interfaces

import (
	"context"

	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"golang.org/x/oauth2"
)

// CandidateSource supplies the prospective invitees to reconcile.
type CandidateSource interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
}

// CredentialProvider issues a fresh bearer credential on demand.
type CredentialProvider interface {
	Refresh(ctx context.Context) (*oauth2.Token, error)
}

// CredentialRefresher is implemented by clients holding a refreshable credential.
type CredentialRefresher interface {
	RefreshCredentials(ctx context.Context) error
}

// RosterClient defines the App Store Connect operations used by reconciliation.
// Write operations report non-success statuses through WriteResult and only
// return an error on transport failures.
type RosterClient interface {
	ListUsers(ctx context.Context) ([]models.RosterUser, error)
	ListApps(ctx context.Context) ([]models.App, error)
	ListBetaGroups(ctx context.Context, app models.App) ([]models.BetaGroup, error)
	ListBetaTesters(ctx context.Context) ([]models.BetaTester, error)
	ListGroupBetaTesters(ctx context.Context, group models.BetaGroup) ([]models.BetaTester, error)
	ListPendingInvitations(ctx context.Context) ([]models.PendingInvitation, error)

	CreateBetaGroup(ctx context.Context, req models.BetaGroupCreateRequest) (models.WriteResult, error)
	CreateBetaTester(ctx context.Context, req models.BetaTesterCreateRequest) (models.WriteResult, error)
	CreateInvitation(ctx context.Context, req models.UserInvitationCreateRequest) (models.WriteResult, error)
	PatchUser(ctx context.Context, userID string, req models.UserUpdateRequest) (models.WriteResult, error)
}

// SyncEngine runs one reconciliation cycle.
type SyncEngine interface {
	RunCycle(ctx context.Context) (*models.CycleResult, error)
}

// MetricsEmitter publishes cycle statistics.
type MetricsEmitter interface {
	EmitSummary(ctx context.Context, summary models.CycleSummary, errors []string) error
}
