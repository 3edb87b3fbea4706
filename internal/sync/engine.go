package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/daniloc96/appstore-testflight-sync/internal/config"
	"github.com/daniloc96/appstore-testflight-sync/internal/interfaces"
	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"github.com/sirupsen/logrus"
)

// Engine runs reconciliation cycles between the candidate source and the
// App Store Connect roster.
type Engine struct {
	client     interfaces.RosterClient
	candidates interfaces.CandidateSource
	cfg        *config.Config
	now        func() time.Time
	mu         sync.Mutex
	running    bool
	cycle      int
}

// NewEngine creates a sync engine.
func NewEngine(client interfaces.RosterClient, candidates interfaces.CandidateSource, cfg *config.Config) *Engine {
	return &Engine{client: client, candidates: candidates, cfg: cfg, now: time.Now}
}

// rosterSnapshot is the roster state read once per cycle.
type rosterSnapshot struct {
	users        []models.RosterUser
	invitations  []models.PendingInvitation
	known        map[string]struct{}
	usersByEmail map[string]models.RosterUser
}

// cycleState accumulates actions and problems across stages.
type cycleState struct {
	actions []models.SyncAction
	errors  []string
	summary models.CycleSummary
}

func (s *cycleState) add(action models.SyncAction) {
	s.actions = append(s.actions, action)
}

// RunCycle performs one reconciliation pass. Concurrent calls are rejected.
func (e *Engine) RunCycle(ctx context.Context) (*models.CycleResult, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, ErrCycleInProgress
	}
	e.running = true
	e.cycle++
	cycle := e.cycle
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	start := time.Now()
	dryRun := e.cfg.Sync.DryRun
	state := &cycleState{}

	if err := e.reinviteExpired(ctx, state, dryRun); err != nil {
		return nil, err
	}

	snapshot, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	state.summary.RosterUsers = len(snapshot.users)
	state.summary.PendingInvitations = len(snapshot.invitations)

	candidates, err := e.intake(ctx, state, snapshot, dryRun)
	if err != nil {
		return nil, err
	}
	state.summary.Candidates = len(candidates)

	if e.cfg.Sync.EnsureRoles {
		if err := e.alignRoles(ctx, state, snapshot, candidates, dryRun); err != nil {
			return nil, err
		}
	}

	if err := e.enroll(ctx, state, snapshot, candidates, dryRun); err != nil {
		return nil, err
	}

	end := time.Now()
	result := &models.CycleResult{
		Cycle:      cycle,
		DryRun:     dryRun,
		StartTime:  start,
		EndTime:    end,
		DurationMs: end.Sub(start).Milliseconds(),
		Actions:    state.actions,
		Summary:    buildSummary(state.summary, state.actions),
		Errors:     state.errors,
	}
	return result, nil
}

// reinviteExpired re-sends every pending invitation past its expiration date.
func (e *Engine) reinviteExpired(ctx context.Context, state *cycleState, dryRun bool) error {
	invitations, err := e.client.ListPendingInvitations(ctx)
	if err != nil {
		return fmt.Errorf("listing pending invitations: %w", err)
	}
	expired, problems := ExpiredInvitations(invitations, e.now())
	state.errors = append(state.errors, problems...)

	logrus.WithFields(logrus.Fields{
		"pending": len(invitations),
		"expired": len(expired),
	}).Info("⏰ [1/4] Expired invitations checked")

	for _, inv := range expired {
		req := models.ReinvitationRequest(inv)
		action := models.SyncAction{
			Type:   models.ActionReinvite,
			Email:  inv.Attributes.Email,
			Roles:  req.Data.Attributes.Roles,
			Reason: fmt.Sprintf("invitation expired at %s", inv.Attributes.ExpirationDate),
		}
		action, err := ExecuteAction(ctx, action, dryRun, func(ctx context.Context) (models.WriteResult, error) {
			return e.client.CreateInvitation(ctx, req)
		})
		state.add(action)
		if err != nil {
			return err
		}
	}
	return nil
}

// snapshot reads the roster and the pending invitations after the refresh stage.
func (e *Engine) snapshot(ctx context.Context) (*rosterSnapshot, error) {
	users, err := e.client.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	invitations, err := e.client.ListPendingInvitations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pending invitations: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"users":   len(users),
		"pending": len(invitations),
	}).Info("👥 [2/4] Roster loaded")
	for _, u := range users {
		logrus.WithFields(logrus.Fields{"username": u.Attributes.Username, "roles": u.Attributes.Roles}).Debug("  roster user")
	}

	return &rosterSnapshot{
		users:        users,
		invitations:  invitations,
		known:        KnownEmails(users, invitations),
		usersByEmail: IndexUsers(users),
	}, nil
}

// intake invites every candidate that is neither a team member nor invited.
func (e *Engine) intake(ctx context.Context, state *cycleState, snapshot *rosterSnapshot, dryRun bool) ([]models.Candidate, error) {
	candidates, err := e.candidates.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	invite, known := PlanInvitations(candidates, snapshot.known)

	logrus.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"to_invite":  len(invite),
		"known":      len(known),
	}).Info("📝 [3/4] Candidates loaded")

	for _, c := range known {
		state.add(skipAction(c.Email, "", "already a team member or invited"))
	}

	roles := e.cfg.Sync.Roles()
	for _, c := range invite {
		req := models.NewUserInvitationCreateRequest(c.Email, c.FirstName, c.LastName, roles, true)
		action := models.SyncAction{
			Type:   models.ActionInvite,
			Email:  c.Email,
			Roles:  roles,
			Reason: "candidate missing from roster",
		}
		action, err := ExecuteAction(ctx, action, dryRun, func(ctx context.Context) (models.WriteResult, error) {
			return e.client.CreateInvitation(ctx, req)
		})
		state.add(action)
		if err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

// alignRoles grants the configured roles to candidates who already joined.
func (e *Engine) alignRoles(ctx context.Context, state *cycleState, snapshot *rosterSnapshot, candidates []models.Candidate, dryRun bool) error {
	updates := PlanRoleUpdates(candidates, snapshot.usersByEmail, e.cfg.Sync.Roles())
	logrus.WithField("updates", len(updates)).Info("🔑 [3b/4] Role alignment planned")

	for _, update := range updates {
		req := models.NewUserRolesUpdateRequest(update.User.ID, update.Roles)
		action := models.SyncAction{
			Type:   models.ActionUpdateRoles,
			Email:  update.User.Attributes.Username,
			Roles:  update.Roles,
			Reason: "team member lacks required roles",
		}
		action, err := ExecuteAction(ctx, action, dryRun, func(ctx context.Context) (models.WriteResult, error) {
			return e.client.PatchUser(ctx, update.User.ID, req)
		})
		state.add(action)
		if err != nil {
			return err
		}
	}
	return nil
}

// enroll adds candidate team members to the internal testers group of every managed app.
func (e *Engine) enroll(ctx context.Context, state *cycleState, snapshot *rosterSnapshot, candidates []models.Candidate, dryRun bool) error {
	apps, err := e.client.ListApps(ctx)
	if err != nil {
		return fmt.Errorf("listing apps: %w", err)
	}
	managed := FilterManagedApps(apps, e.cfg.Sync.BundleIDs)
	state.summary.ManagedApps = len(managed)

	logrus.WithFields(logrus.Fields{
		"apps":    len(apps),
		"managed": len(managed),
	}).Info("✈️  [4/4] Enrolling beta testers")

	for _, app := range managed {
		group, ok, err := e.resolveInternalGroup(ctx, state, app, dryRun)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		testers, err := e.client.ListGroupBetaTesters(ctx, group)
		if err != nil {
			return fmt.Errorf("listing testers of group %s: %w", group.ID, err)
		}
		enroll, skipped := PlanTesterEnrollment(candidates, snapshot.usersByEmail, TesterEmails(testers))

		logrus.WithFields(logrus.Fields{
			"bundle_id": app.Attributes.BundleID,
			"group":     group.Attributes.Name,
			"testers":   len(testers),
			"to_add":    len(enroll),
		}).Info("  internal testers group loaded")

		for _, skip := range skipped {
			state.add(skipAction(skip.Email, app.Attributes.BundleID, skip.Reason))
		}
		for _, user := range enroll {
			req := models.NewBetaTesterCreateRequest(user, group.ID)
			action := models.SyncAction{
				Type:     models.ActionAddBetaTester,
				Email:    user.Attributes.Username,
				BundleID: app.Attributes.BundleID,
				Reason:   "team member missing from internal testers group",
			}
			action, err := ExecuteAction(ctx, action, dryRun, func(ctx context.Context) (models.WriteResult, error) {
				return e.client.CreateBetaTester(ctx, req)
			})
			state.add(action)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveInternalGroup finds the internal beta group of an app, creating it
// when missing. In dry-run the creation is only planned and ok is false.
func (e *Engine) resolveInternalGroup(ctx context.Context, state *cycleState, app models.App, dryRun bool) (models.BetaGroup, bool, error) {
	groups, err := e.client.ListBetaGroups(ctx, app)
	if err != nil {
		return models.BetaGroup{}, false, fmt.Errorf("listing beta groups of %s: %w", app.Attributes.BundleID, err)
	}
	if group, ok := FindInternalGroup(groups); ok {
		return group, true, nil
	}

	req := models.NewInternalBetaGroupRequest(app.ID)
	action := models.SyncAction{
		Type:     models.ActionCreateBetaGroup,
		BundleID: app.Attributes.BundleID,
		Reason:   "app has no internal testers group",
	}
	action, err = ExecuteAction(ctx, action, dryRun, func(ctx context.Context) (models.WriteResult, error) {
		return e.client.CreateBetaGroup(ctx, req)
	})
	state.add(action)
	if err != nil {
		return models.BetaGroup{}, false, err
	}
	if dryRun {
		logrus.WithField("bundle_id", app.Attributes.BundleID).Info("  [DRY RUN] skipping enrollment until the internal group exists")
		return models.BetaGroup{}, false, nil
	}

	groups, err = e.client.ListBetaGroups(ctx, app)
	if err != nil {
		return models.BetaGroup{}, false, fmt.Errorf("listing beta groups of %s: %w", app.Attributes.BundleID, err)
	}
	group, ok := FindInternalGroup(groups)
	if !ok {
		return models.BetaGroup{}, false, &InternalGroupError{BundleID: app.Attributes.BundleID, AppID: app.ID}
	}
	return group, true, nil
}

func buildSummary(summary models.CycleSummary, actions []models.SyncAction) models.CycleSummary {
	for _, action := range actions {
		if action.IsWrite() {
			summary.ActionsPlanned++
		}
		if action.Executed {
			summary.ActionsExecuted++
		}
		if action.SoftFailed() {
			summary.SoftFailures++
			continue
		}
		switch action.Type {
		case models.ActionReinvite:
			summary.Reinvited++
		case models.ActionInvite:
			summary.Invited++
		case models.ActionUpdateRoles:
			summary.RolesUpdated++
		case models.ActionCreateBetaGroup:
			summary.GroupsCreated++
		case models.ActionAddBetaTester:
			summary.TestersAdded++
		case models.ActionSkip:
			summary.Skipped++
		}
	}
	return summary
}
