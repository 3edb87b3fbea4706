package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/daniloc96/appstore-testflight-sync/internal/models"
)

// fakePlatform is an in-memory App Store Connect that applies writes, so
// consecutive cycles observe each other's effects.
type fakePlatform struct {
	now          time.Time
	users        []models.RosterUser
	invitations  []models.PendingInvitation
	apps         []models.App
	groups       map[string][]models.BetaGroup
	groupTesters map[string][]models.BetaTester

	// groupCreationIgnored accepts group creation without ever creating the group.
	groupCreationIgnored bool

	writes      int
	invited     []models.UserInvitationCreateRequest
	testerAdds  []models.BetaTesterCreateRequest
	groupAdds   []models.BetaGroupCreateRequest
	rolePatches map[string][]models.UserRole
	nextID      int
}

func newFakePlatform(now time.Time) *fakePlatform {
	return &fakePlatform{
		now:          now,
		groups:       map[string][]models.BetaGroup{},
		groupTesters: map[string][]models.BetaTester{},
		rolePatches:  map[string][]models.UserRole{},
	}
}

func (f *fakePlatform) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakePlatform) ListUsers(ctx context.Context) ([]models.RosterUser, error) {
	return append([]models.RosterUser(nil), f.users...), nil
}

func (f *fakePlatform) ListApps(ctx context.Context) ([]models.App, error) {
	return append([]models.App(nil), f.apps...), nil
}

func (f *fakePlatform) ListBetaGroups(ctx context.Context, app models.App) ([]models.BetaGroup, error) {
	return append([]models.BetaGroup(nil), f.groups[app.ID]...), nil
}

func (f *fakePlatform) ListBetaTesters(ctx context.Context) ([]models.BetaTester, error) {
	var all []models.BetaTester
	for _, testers := range f.groupTesters {
		all = append(all, testers...)
	}
	return all, nil
}

func (f *fakePlatform) ListGroupBetaTesters(ctx context.Context, group models.BetaGroup) ([]models.BetaTester, error) {
	return append([]models.BetaTester(nil), f.groupTesters[group.ID]...), nil
}

func (f *fakePlatform) ListPendingInvitations(ctx context.Context) ([]models.PendingInvitation, error) {
	return append([]models.PendingInvitation(nil), f.invitations...), nil
}

func (f *fakePlatform) CreateBetaGroup(ctx context.Context, req models.BetaGroupCreateRequest) (models.WriteResult, error) {
	f.writes++
	f.groupAdds = append(f.groupAdds, req)
	if !f.groupCreationIgnored {
		appID := req.Data.Relationships.App.Data.ID
		f.groups[appID] = append(f.groups[appID], internalGroup(f.id("group")))
	}
	return models.Succeeded(201), nil
}

func (f *fakePlatform) CreateBetaTester(ctx context.Context, req models.BetaTesterCreateRequest) (models.WriteResult, error) {
	f.writes++
	f.testerAdds = append(f.testerAdds, req)
	email := req.Data.Attributes.Email
	tester := models.BetaTester{
		ID:         f.id("tester"),
		Type:       models.TypeBetaTesters,
		Attributes: models.BetaTesterAttributes{FirstName: req.Data.Attributes.FirstName, Email: &email},
	}
	for _, group := range req.Data.Relationships.BetaGroups.Data {
		f.groupTesters[group.ID] = append(f.groupTesters[group.ID], tester)
	}
	return models.Succeeded(201), nil
}

func (f *fakePlatform) CreateInvitation(ctx context.Context, req models.UserInvitationCreateRequest) (models.WriteResult, error) {
	f.writes++
	f.invited = append(f.invited, req)
	attrs := req.Data.Attributes
	expiresAt := f.now.Add(7 * 24 * time.Hour).Format("2006-01-02T15:04:05.000-07:00")
	for i := range f.invitations {
		if models.EmailKey(f.invitations[i].Attributes.Email) == models.EmailKey(attrs.Email) {
			f.invitations[i].Attributes.ExpirationDate = expiresAt
			return models.Succeeded(201), nil
		}
	}
	f.invitations = append(f.invitations, invitation(attrs.Email, expiresAt))
	return models.Succeeded(201), nil
}

func (f *fakePlatform) PatchUser(ctx context.Context, userID string, req models.UserUpdateRequest) (models.WriteResult, error) {
	f.writes++
	f.rolePatches[userID] = req.Data.Attributes.Roles
	for i := range f.users {
		if f.users[i].ID == userID {
			f.users[i].Attributes.Roles = req.Data.Attributes.Roles
		}
	}
	return models.Succeeded(200), nil
}

func rosterUser(id, email string, roles ...models.UserRole) models.RosterUser {
	return models.RosterUser{
		ID:   id,
		Type: models.TypeUsers,
		Attributes: models.RosterUserAttributes{
			Username:  email,
			FirstName: "First",
			LastName:  "Last",
			Roles:     roles,
		},
	}
}

func invitation(email, expiresAt string) models.PendingInvitation {
	return models.PendingInvitation{
		ID:   "inv-" + email,
		Type: models.TypeUserInvitations,
		Attributes: models.PendingInvitationAttributes{
			Email:          email,
			FirstName:      "Invited",
			LastName:       "User",
			Roles:          []models.UserRole{models.RoleSales},
			ExpirationDate: expiresAt,
		},
	}
}

func app(id, bundleID string) models.App {
	return models.App{ID: id, Type: models.TypeApps, Attributes: models.AppAttributes{BundleID: bundleID, Name: bundleID}}
}

func internalGroup(id string) models.BetaGroup {
	internal := true
	return models.BetaGroup{
		ID:         id,
		Type:       models.TypeBetaGroups,
		Attributes: models.BetaGroupAttributes{Name: models.InternalTestersGroupName, IsInternalGroup: &internal},
	}
}

func tester(id, email string) models.BetaTester {
	return models.BetaTester{ID: id, Type: models.TypeBetaTesters, Attributes: models.BetaTesterAttributes{Email: &email}}
}
