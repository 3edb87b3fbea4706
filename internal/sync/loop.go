package sync

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/daniloc96/appstore-testflight-sync/internal/appstore"
	"github.com/daniloc96/appstore-testflight-sync/internal/interfaces"
	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"github.com/sirupsen/logrus"
)

// Failure classes reported for a failed cycle.
const (
	FailureCredentials       = "credentials"
	FailureMalformedResponse = "malformed_response"
	FailureInternalGroup     = "internal_group"
	FailureTransport         = "transport"
	FailureCanceled          = "canceled"
	FailureUnexpected        = "unexpected"
	FailurePanic             = "panic"
)

// DefaultRetryDelay is the pause after a failed cycle.
const DefaultRetryDelay = 5 * time.Second

// Loop repeats reconciliation cycles until its context is canceled.
type Loop struct {
	engine     interfaces.SyncEngine
	refresher  interfaces.CredentialRefresher
	metrics    interfaces.MetricsEmitter
	interval   time.Duration
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewLoop creates a convergence loop. interval is the pause between
// successful cycles; zero starts the next cycle immediately.
func NewLoop(engine interfaces.SyncEngine, refresher interfaces.CredentialRefresher, interval time.Duration) *Loop {
	return &Loop{
		engine:     engine,
		refresher:  refresher,
		interval:   interval,
		retryDelay: DefaultRetryDelay,
		sleep:      sleepContext,
	}
}

// SetMetrics enables per-cycle metrics. If nil, metrics are skipped.
func (l *Loop) SetMetrics(m interfaces.MetricsEmitter) {
	l.metrics = m
}

// Run executes cycles until ctx is canceled. Failed cycles are logged and
// never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	logrus.WithField("interval", l.interval.String()).Info("🔁 Convergence loop started")
	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			logrus.Info("🛑 Convergence loop stopped")
			return err
		}

		logrus.WithField("iteration", iteration).Info("▶ Starting cycle")
		_, err := l.RunOnce(ctx)

		delay := l.interval
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			delay = l.retryDelay
		}
		if delay > 0 {
			if err := l.sleep(ctx, delay); err != nil {
				continue
			}
		}
	}
}

// RunOnce refreshes credentials and runs a single cycle. Panics are
// recovered and returned as *PanicError.
func (l *Loop) RunOnce(ctx context.Context) (result *models.CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &PanicError{Value: r}
		}
		if err != nil {
			l.reportFailure(ctx, err)
		}
	}()

	if l.refresher != nil {
		if refreshErr := l.refresher.RefreshCredentials(ctx); refreshErr != nil {
			return nil, &CredentialsError{Err: refreshErr}
		}
	}

	result, err = l.engine.RunCycle(ctx)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"cycle":       result.Cycle,
		"dry_run":     result.DryRun,
		"duration_ms": result.DurationMs,
	}).Info("✅ " + result.Summary.String())
	for _, problem := range result.Errors {
		logrus.WithField("cycle", result.Cycle).Warn("⚠ " + problem)
	}
	l.emit(ctx, result.Summary, result.Errors)
	return result, nil
}

func (l *Loop) reportFailure(ctx context.Context, err error) {
	class := Classify(err)
	entry := logrus.WithError(err).WithField("class", class)
	if class == FailureCanceled {
		entry.Info("cycle interrupted")
		return
	}
	entry.Error("❌ Cycle failed")
	l.emit(ctx, models.CycleSummary{}, []string{fmt.Sprintf("%s: %v", class, err)})
}

func (l *Loop) emit(ctx context.Context, summary models.CycleSummary, errs []string) {
	if l.metrics == nil || ctx.Err() != nil {
		return
	}
	if err := l.metrics.EmitSummary(ctx, summary, errs); err != nil {
		logrus.WithError(err).Warn("failed to emit metrics")
	}
}

// Classify maps a cycle error to a failure class for logging and metrics.
func Classify(err error) string {
	var panicErr *PanicError
	var credErr *CredentialsError
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &panicErr):
		return FailurePanic
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	case errors.As(err, &credErr), errors.Is(err, appstore.ErrNoCredentials):
		return FailureCredentials
	case appstore.IsMalformedResponseError(err):
		return FailureMalformedResponse
	case IsInternalGroupError(err):
		return FailureInternalGroup
	case errors.As(err, &netErr):
		return FailureTransport
	default:
		return FailureUnexpected
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
