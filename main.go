package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/daniloc96/appstore-testflight-sync/cmd"
	"github.com/daniloc96/appstore-testflight-sync/internal/appstore"
	"github.com/daniloc96/appstore-testflight-sync/internal/auth"
	"github.com/daniloc96/appstore-testflight-sync/internal/config"
	"github.com/daniloc96/appstore-testflight-sync/internal/google"
	"github.com/daniloc96/appstore-testflight-sync/internal/log"
	"github.com/daniloc96/appstore-testflight-sync/internal/metrics"
	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"github.com/daniloc96/appstore-testflight-sync/internal/secrets"
	"github.com/daniloc96/appstore-testflight-sync/internal/sync"
	"github.com/sirupsen/logrus"
)

func main() {
	cmd.SetLambdaHandler(HandleRequest)
	cmd.SetRunCycle(runCycle)
	cmd.SetRunLoop(runLoop)
	cmd.SetRunStatus(runStatus)
	cmd.Execute()
}

// HandleRequest is the AWS Lambda handler. Each invocation runs one cycle.
func HandleRequest(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error) {
	if event.Source != "" || event.DetailType != "" {
		if !event.IsScheduled() {
			return models.NewErrorResponse(fmt.Errorf("unsupported event source")), nil
		}
	}
	cfg, err := config.Load("")
	if err != nil {
		return models.NewErrorResponse(err), nil
	}

	cfg.Sync.DryRun = event.IsDryRun(cfg.Sync.DryRun)
	if err := config.Validate(cfg); err != nil {
		return models.NewErrorResponse(err), nil
	}
	log.Install(cfg.Log.Level, cfg.Log.Format)

	result, err := runCycle(ctx, cfg)
	if err != nil {
		return models.NewErrorResponse(err), nil
	}

	return models.NewSuccessResponse(result), nil
}

var runCycle = func(ctx context.Context, cfg *config.Config) (*models.CycleResult, error) {
	loop, err := newLoop(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return loop.RunOnce(ctx)
}

var runLoop = func(ctx context.Context, cfg *config.Config) error {
	loop, err := newLoop(ctx, cfg)
	if err != nil {
		return err
	}
	return loop.Run(ctx)
}

var runStatus = func(ctx context.Context, cfg *config.Config) (*models.RosterStatus, error) {
	client, err := newAppStoreClient(cfg, secrets.NewResolver())
	if err != nil {
		return nil, err
	}
	if err := client.RefreshCredentials(ctx); err != nil {
		return nil, err
	}
	return sync.Status(ctx, client, cfg.Sync.BundleIDs, time.Now())
}

// newLoop wires the App Store client, candidate source and metrics into a
// convergence loop.
func newLoop(ctx context.Context, cfg *config.Config) (*sync.Loop, error) {
	resolver := secrets.NewResolver()

	client, err := newAppStoreClient(cfg, resolver)
	if err != nil {
		return nil, err
	}

	googleCreds, err := resolver.Resolve(cfg.Google.CredentialsSecret, cfg.Google.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	candidates, err := google.NewClient(ctx, googleCreds, cfg.Google.Subject, cfg.Google.FormID, google.Questions{
		FirstName: cfg.Google.Questions.FirstName,
		LastName:  cfg.Google.Questions.LastName,
		Email:     cfg.Google.Questions.Email,
	})
	if err != nil {
		return nil, err
	}

	engine := sync.NewEngine(client, candidates, cfg)
	loop := sync.NewLoop(engine, client, cfg.Sync.Interval)

	if cfg.Metrics.Enabled {
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.Metrics.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Metrics.Region))
		}
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, opts...)
		if awsErr != nil {
			logrus.WithError(awsErr).Warn("⚠ AWS config load failed, metrics disabled")
		} else {
			loop.SetMetrics(metrics.NewEmitter(awsCfg, cfg.Metrics.Namespace))
			logrus.WithField("namespace", cfg.Metrics.Namespace).Info("✅ CloudWatch metrics enabled")
		}
	}

	return loop, nil
}

func newAppStoreClient(cfg *config.Config, resolver *secrets.Resolver) (*appstore.Client, error) {
	privateKey, err := resolver.Resolve(cfg.AppStore.PrivateKeySecret, cfg.AppStore.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("app store private key: %w", err)
	}
	tokens, err := auth.NewTokenGenerator(cfg.AppStore.KeyID, cfg.AppStore.IssuerID, privateKey, cfg.AppStore.TokenTTL)
	if err != nil {
		return nil, err
	}
	return appstore.NewClient(tokens, appstore.Options{
		BaseURL:             cfg.AppStore.BaseURL,
		HTTPClient:          &http.Client{Timeout: cfg.AppStore.RequestTimeout},
		Throttle:            cfg.AppStore.Throttle,
		MaxMalformedRetries: cfg.AppStore.MaxMalformedRetries,
		MalformedBackoff:    cfg.AppStore.MalformedBackoff,
	})
}
