package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/daniloc96/appstore-testflight-sync/internal/config"
	"github.com/daniloc96/appstore-testflight-sync/internal/log"
	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	flagDryRun    bool
	flagOnce      bool
	flagEnsure    bool
	flagBundleIDs []string
	flagFormID    string
	flagLogLevel  string
	flagLogFormat string

	lambdaHandler func(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error)
	runCycle      func(ctx context.Context, cfg *config.Config) (*models.CycleResult, error)
	runLoop       func(ctx context.Context, cfg *config.Config) error
	runStatus     func(ctx context.Context, cfg *config.Config) (*models.RosterStatus, error)
)

// SetLambdaHandler registers the Lambda handler used in Lambda mode.
func SetLambdaHandler(handler func(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error)) {
	lambdaHandler = handler
}

// SetRunCycle registers the single cycle runner used by --once.
func SetRunCycle(handler func(ctx context.Context, cfg *config.Config) (*models.CycleResult, error)) {
	runCycle = handler
}

// SetRunLoop registers the convergence loop runner.
func SetRunLoop(handler func(ctx context.Context, cfg *config.Config) error) {
	runLoop = handler
}

// SetRunStatus registers the read-only status runner.
func SetRunStatus(handler func(ctx context.Context, cfg *config.Config) (*models.RosterStatus, error)) {
	runStatus = handler
}

var rootCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync Google Form candidates to the App Store Connect roster and TestFlight",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if flagOnce {
			if runCycle == nil {
				return fmt.Errorf("sync engine is not configured")
			}
			result, err := runCycle(ctx, cfg)
			if err != nil {
				return err
			}
			printWrites(result)
			return nil
		}

		if runLoop == nil {
			return fmt.Errorf("sync loop is not configured")
		}
		if err := runLoop(ctx, cfg); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show roster, invitation and TestFlight counts without writing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if runStatus == nil {
			return fmt.Errorf("status runner is not configured")
		}

		status, err := runStatus(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"roster_users":        status.RosterUsers,
			"pending_invitations": status.PendingInvitations,
			"expired_invitations": status.ExpiredInvitations,
			"beta_testers":        status.BetaTesters,
		}).Info("📊 Roster status")
		for _, app := range status.Apps {
			group := app.InternalGroup
			if group == "" {
				group = "(missing)"
			}
			logrus.WithFields(logrus.Fields{
				"bundle_id":      app.BundleID,
				"internal_group": group,
				"testers":        app.Testers,
			}).Info("📱 " + app.Name)
		}
		return nil
	},
}

// Execute runs the CLI or Lambda handler depending on environment.
func Execute() {
	if isLambda() {
		if lambdaHandler == nil {
			logrus.Fatal("lambda handler is not configured")
		}
		lambda.Start(lambdaHandler)
		return
	}

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	overrideConfigFromFlags(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log.Install(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func printWrites(result *models.CycleResult) {
	writes := result.Writes()
	if len(writes) == 0 {
		logrus.Info("Writes: (none)")
		return
	}
	logrus.Infof("Writes (%d):", len(writes))
	for i, action := range writes {
		logrus.WithFields(action.LogFields()).Infof("  %d. %s", i+1, action.Type)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Preview changes without applying")
	rootCmd.PersistentFlags().StringSliceVar(&flagBundleIDs, "bundle-id", nil, "Managed app bundle ID (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagFormID, "form-id", "", "Google Form ID holding candidate responses")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: text, pretty or json")
	rootCmd.Flags().BoolVar(&flagOnce, "once", false, "Run a single cycle and exit")
	rootCmd.Flags().BoolVar(&flagEnsure, "ensure-roles", false, "Align existing users' roles with the invite roles")
	rootCmd.AddCommand(statusCmd)
}

func isLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

func overrideConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("dry-run") {
		cfg.Sync.DryRun = flagDryRun
	}
	if cmd.Flags().Changed("bundle-id") {
		cfg.Sync.BundleIDs = flagBundleIDs
	}
	if cmd.Flags().Changed("form-id") {
		cfg.Google.FormID = flagFormID
	}
	if cmd.Flags().Changed("ensure-roles") {
		cfg.Sync.EnsureRoles = flagEnsure
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = flagLogFormat
	}
}
