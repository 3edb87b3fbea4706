package sync

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"github.com/sirupsen/logrus"
)

var fractionalSeconds = regexp.MustCompile(`\.\d+`)

// expirationLayouts accepts both "+09:00" and "+0900" style offsets.
var expirationLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
}

// ParseExpirationDate parses an invitation expiration timestamp, ignoring
// any fractional seconds.
func ParseExpirationDate(value string) (time.Time, error) {
	cleaned := fractionalSeconds.ReplaceAllString(strings.TrimSpace(value), "")
	var lastErr error
	for _, layout := range expirationLayouts {
		parsed, err := time.Parse(layout, cleaned)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parsing expiration date %q: %w", value, lastErr)
}

// ExpiredInvitations returns the invitations whose expiration is strictly
// before now. Invitations with an unreadable expiration are left out and
// reported through problems.
func ExpiredInvitations(invitations []models.PendingInvitation, now time.Time) (expired []models.PendingInvitation, problems []string) {
	for _, inv := range invitations {
		expiresAt, err := ParseExpirationDate(inv.Attributes.ExpirationDate)
		if err != nil {
			logrus.WithError(err).WithField("email", inv.Attributes.Email).Warn("skipping invitation with unreadable expiration date")
			problems = append(problems, fmt.Sprintf("invitation %s: %v", inv.Attributes.Email, err))
			continue
		}
		if expiresAt.Before(now) {
			expired = append(expired, inv)
		}
	}
	return expired, problems
}

// KnownEmails returns the normalized emails of roster users and pending invitees.
func KnownEmails(users []models.RosterUser, invitations []models.PendingInvitation) map[string]struct{} {
	known := make(map[string]struct{}, len(users)+len(invitations))
	for _, user := range users {
		if key := models.EmailKey(user.Attributes.Username); key != "" {
			known[key] = struct{}{}
		}
	}
	for _, inv := range invitations {
		if key := models.EmailKey(inv.Attributes.Email); key != "" {
			known[key] = struct{}{}
		}
	}
	return known
}

// PlanInvitations splits candidates into those to invite and those already
// known. A candidate appearing more than once is considered only once.
func PlanInvitations(candidates []models.Candidate, known map[string]struct{}) (invite []models.Candidate, skipped []models.Candidate) {
	seen := map[string]struct{}{}
	for _, candidate := range candidates {
		key := candidate.Key()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, exists := known[key]; exists {
			skipped = append(skipped, candidate)
			continue
		}
		invite = append(invite, candidate)
	}
	return invite, skipped
}

// RoleUpdate is a roster user missing some of the required roles.
type RoleUpdate struct {
	User  models.RosterUser
	Roles []models.UserRole
}

// PlanRoleUpdates returns the roster users matched by a candidate that lack
// any of the required roles, with the union of their roles and the required ones.
func PlanRoleUpdates(candidates []models.Candidate, usersByEmail map[string]models.RosterUser, required []models.UserRole) []RoleUpdate {
	var updates []RoleUpdate
	seen := map[string]struct{}{}
	for _, candidate := range candidates {
		key := candidate.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		user, ok := usersByEmail[key]
		if !ok {
			continue
		}
		roles := append([]models.UserRole(nil), user.Attributes.Roles...)
		missing := false
		for _, role := range required {
			if !user.HasRole(role) {
				roles = append(roles, role)
				missing = true
			}
		}
		if missing {
			updates = append(updates, RoleUpdate{User: user, Roles: roles})
		}
	}
	return updates
}

// EnrollmentSkip records why a candidate is not enrolled into an app.
type EnrollmentSkip struct {
	Email  string
	Reason string
}

// PlanTesterEnrollment returns the roster users to add to an internal group:
// candidates that are team members and not yet in the group.
func PlanTesterEnrollment(candidates []models.Candidate, usersByEmail map[string]models.RosterUser, members map[string]struct{}) (enroll []models.RosterUser, skipped []EnrollmentSkip) {
	seen := map[string]struct{}{}
	for _, candidate := range candidates {
		key := candidate.Key()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		user, ok := usersByEmail[key]
		if !ok {
			skipped = append(skipped, EnrollmentSkip{Email: candidate.Email, Reason: "not a team member yet"})
			continue
		}
		if _, exists := members[key]; exists {
			skipped = append(skipped, EnrollmentSkip{Email: candidate.Email, Reason: "already in internal testers group"})
			continue
		}
		enroll = append(enroll, user)
	}
	return enroll, skipped
}

// IndexUsers maps normalized usernames to roster users.
func IndexUsers(users []models.RosterUser) map[string]models.RosterUser {
	index := make(map[string]models.RosterUser, len(users))
	for _, user := range users {
		if key := models.EmailKey(user.Attributes.Username); key != "" {
			index[key] = user
		}
	}
	return index
}

// TesterEmails returns the normalized emails of the given testers.
func TesterEmails(testers []models.BetaTester) map[string]struct{} {
	emails := make(map[string]struct{}, len(testers))
	for _, tester := range testers {
		if key := models.EmailKey(tester.EmailAddress()); key != "" {
			emails[key] = struct{}{}
		}
	}
	return emails
}

// FindInternalGroup returns the first group flagged as internal.
func FindInternalGroup(groups []models.BetaGroup) (models.BetaGroup, bool) {
	for _, group := range groups {
		if group.IsInternal() {
			return group, true
		}
	}
	return models.BetaGroup{}, false
}

// FilterManagedApps keeps the apps whose bundle id is configured, in input order.
func FilterManagedApps(apps []models.App, bundleIDs []string) []models.App {
	wanted := make(map[string]struct{}, len(bundleIDs))
	for _, id := range bundleIDs {
		wanted[id] = struct{}{}
	}
	var managed []models.App
	for _, app := range apps {
		if _, ok := wanted[app.Attributes.BundleID]; ok {
			managed = append(managed, app)
		}
	}
	return managed
}
