package appstore

import (
	"context"

	"github.com/daniloc96/appstore-testflight-sync/internal/models"
)

// MockClient is a simple mock implementation of the App Store Connect client.
type MockClient struct {
	RefreshCredentialsFunc     func(ctx context.Context) error
	ListUsersFunc              func(ctx context.Context) ([]models.RosterUser, error)
	ListAppsFunc               func(ctx context.Context) ([]models.App, error)
	ListBetaGroupsFunc         func(ctx context.Context, app models.App) ([]models.BetaGroup, error)
	ListBetaTestersFunc        func(ctx context.Context) ([]models.BetaTester, error)
	ListGroupBetaTestersFunc   func(ctx context.Context, group models.BetaGroup) ([]models.BetaTester, error)
	ListPendingInvitationsFunc func(ctx context.Context) ([]models.PendingInvitation, error)
	CreateBetaGroupFunc        func(ctx context.Context, req models.BetaGroupCreateRequest) (models.WriteResult, error)
	CreateBetaTesterFunc       func(ctx context.Context, req models.BetaTesterCreateRequest) (models.WriteResult, error)
	CreateInvitationFunc       func(ctx context.Context, req models.UserInvitationCreateRequest) (models.WriteResult, error)
	PatchUserFunc              func(ctx context.Context, userID string, req models.UserUpdateRequest) (models.WriteResult, error)
}

func (m *MockClient) RefreshCredentials(ctx context.Context) error {
	if m.RefreshCredentialsFunc == nil {
		return nil
	}
	return m.RefreshCredentialsFunc(ctx)
}

func (m *MockClient) ListUsers(ctx context.Context) ([]models.RosterUser, error) {
	if m.ListUsersFunc == nil {
		return nil, nil
	}
	return m.ListUsersFunc(ctx)
}

func (m *MockClient) ListApps(ctx context.Context) ([]models.App, error) {
	if m.ListAppsFunc == nil {
		return nil, nil
	}
	return m.ListAppsFunc(ctx)
}

func (m *MockClient) ListBetaGroups(ctx context.Context, app models.App) ([]models.BetaGroup, error) {
	if m.ListBetaGroupsFunc == nil {
		return nil, nil
	}
	return m.ListBetaGroupsFunc(ctx, app)
}

func (m *MockClient) ListBetaTesters(ctx context.Context) ([]models.BetaTester, error) {
	if m.ListBetaTestersFunc == nil {
		return nil, nil
	}
	return m.ListBetaTestersFunc(ctx)
}

func (m *MockClient) ListGroupBetaTesters(ctx context.Context, group models.BetaGroup) ([]models.BetaTester, error) {
	if m.ListGroupBetaTestersFunc == nil {
		return nil, nil
	}
	return m.ListGroupBetaTestersFunc(ctx, group)
}

func (m *MockClient) ListPendingInvitations(ctx context.Context) ([]models.PendingInvitation, error) {
	if m.ListPendingInvitationsFunc == nil {
		return nil, nil
	}
	return m.ListPendingInvitationsFunc(ctx)
}

func (m *MockClient) CreateBetaGroup(ctx context.Context, req models.BetaGroupCreateRequest) (models.WriteResult, error) {
	if m.CreateBetaGroupFunc == nil {
		return models.Succeeded(201), nil
	}
	return m.CreateBetaGroupFunc(ctx, req)
}

func (m *MockClient) CreateBetaTester(ctx context.Context, req models.BetaTesterCreateRequest) (models.WriteResult, error) {
	if m.CreateBetaTesterFunc == nil {
		return models.Succeeded(201), nil
	}
	return m.CreateBetaTesterFunc(ctx, req)
}

func (m *MockClient) CreateInvitation(ctx context.Context, req models.UserInvitationCreateRequest) (models.WriteResult, error) {
	if m.CreateInvitationFunc == nil {
		return models.Succeeded(201), nil
	}
	return m.CreateInvitationFunc(ctx, req)
}

func (m *MockClient) PatchUser(ctx context.Context, userID string, req models.UserUpdateRequest) (models.WriteResult, error) {
	if m.PatchUserFunc == nil {
		return models.Succeeded(200), nil
	}
	return m.PatchUserFunc(ctx, userID, req)
}
