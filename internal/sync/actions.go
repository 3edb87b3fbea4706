package sync

import (
	"context"

	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"github.com/sirupsen/logrus"
)

type writeFunc func(ctx context.Context) (models.WriteResult, error)

// ExecuteAction performs the write behind an action unless dry-run is enabled.
// Rejected writes are recorded on the action; only transport failures are
// returned as errors.
func ExecuteAction(ctx context.Context, action models.SyncAction, dryRun bool, write writeFunc) (models.SyncAction, error) {
	if dryRun {
		action.Executed = false
		logrus.WithFields(action.LogFields()).Info("  [DRY RUN] would execute")
		return action, nil
	}

	result, err := write(ctx)
	if err != nil {
		errMsg := err.Error()
		action.Error = &errMsg
		logrus.WithError(err).WithFields(action.LogFields()).Error("write request failed")
		return action, err
	}
	action.Record(result)

	if action.SoftFailed() {
		logrus.WithFields(action.LogFields()).Warn("  ✗ write rejected")
	} else {
		logrus.WithFields(action.LogFields()).Info("  ✓ executed")
	}
	return action, nil
}

// skipAction returns a logged skip decision.
func skipAction(email, bundleID, reason string) models.SyncAction {
	action := models.SyncAction{
		Type:     models.ActionSkip,
		Email:    email,
		BundleID: bundleID,
		Reason:   reason,
	}
	logrus.WithFields(action.LogFields()).Info("  skip")
	return action
}
