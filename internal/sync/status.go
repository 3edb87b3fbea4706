package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/daniloc96/appstore-testflight-sync/internal/interfaces"
	"github.com/daniloc96/appstore-testflight-sync/internal/models"
)

// Status reads the roster and TestFlight state without writing anything.
func Status(ctx context.Context, client interfaces.RosterClient, bundleIDs []string, now time.Time) (*models.RosterStatus, error) {
	users, err := client.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	invitations, err := client.ListPendingInvitations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pending invitations: %w", err)
	}
	testers, err := client.ListBetaTesters(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing beta testers: %w", err)
	}
	apps, err := client.ListApps(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing apps: %w", err)
	}
	expired, _ := ExpiredInvitations(invitations, now)

	status := &models.RosterStatus{
		RosterUsers:        len(users),
		PendingInvitations: len(invitations),
		ExpiredInvitations: len(expired),
		BetaTesters:        len(testers),
	}
	for _, app := range FilterManagedApps(apps, bundleIDs) {
		appStatus := models.AppStatus{BundleID: app.Attributes.BundleID, Name: app.Attributes.Name}
		groups, err := client.ListBetaGroups(ctx, app)
		if err != nil {
			return nil, fmt.Errorf("listing beta groups of %s: %w", app.Attributes.BundleID, err)
		}
		if group, ok := FindInternalGroup(groups); ok {
			members, err := client.ListGroupBetaTesters(ctx, group)
			if err != nil {
				return nil, fmt.Errorf("listing testers of group %s: %w", group.ID, err)
			}
			appStatus.InternalGroup = group.Attributes.Name
			appStatus.Testers = len(members)
		}
		status.Apps = append(status.Apps, appStatus)
	}
	return status, nil
}
