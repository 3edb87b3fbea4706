package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment variables, and defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("appstore.base_url", "https://api.appstoreconnect.apple.com")
	v.SetDefault("appstore.token_ttl", 10*time.Minute)
	v.SetDefault("appstore.throttle", time.Second)
	v.SetDefault("appstore.request_timeout", 60*time.Second)
	v.SetDefault("appstore.max_malformed_retries", 5)
	v.SetDefault("appstore.malformed_backoff", 500*time.Millisecond)
	v.SetDefault("sync.invite_roles", []string{"SALES"})
	v.SetDefault("sync.ensure_roles", false)
	v.SetDefault("sync.dry_run", false)
	v.SetDefault("sync.interval", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "AppStoreTestFlightSync")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("appstore.issuer_id", "ASC_ISSUER_ID")
	_ = v.BindEnv("appstore.key_id", "ASC_KEY_ID")
	_ = v.BindEnv("appstore.private_key_file", "ASC_PRIVATE_KEY_FILE")
	_ = v.BindEnv("appstore.private_key_secret", "ASC_PRIVATE_KEY_SECRET")
	_ = v.BindEnv("appstore.base_url", "ASC_BASE_URL")
	_ = v.BindEnv("appstore.token_ttl", "ASC_TOKEN_TTL")
	_ = v.BindEnv("appstore.throttle", "ASC_THROTTLE")
	_ = v.BindEnv("appstore.request_timeout", "ASC_REQUEST_TIMEOUT")
	_ = v.BindEnv("appstore.max_malformed_retries", "ASC_MAX_MALFORMED_RETRIES")
	_ = v.BindEnv("appstore.malformed_backoff", "ASC_MALFORMED_BACKOFF")
	_ = v.BindEnv("google.form_id", "GOOGLE_FORM_ID")
	_ = v.BindEnv("google.credentials_file", "GOOGLE_CREDENTIALS_FILE")
	_ = v.BindEnv("google.credentials_secret", "GOOGLE_CREDENTIALS_SECRET")
	_ = v.BindEnv("google.subject", "GOOGLE_SUBJECT")
	_ = v.BindEnv("google.questions.first_name", "GOOGLE_QUESTION_FIRST_NAME")
	_ = v.BindEnv("google.questions.last_name", "GOOGLE_QUESTION_LAST_NAME")
	_ = v.BindEnv("google.questions.email", "GOOGLE_QUESTION_EMAIL")
	_ = v.BindEnv("sync.bundle_ids", "BUNDLE_IDS")
	_ = v.BindEnv("sync.invite_roles", "INVITE_ROLES")
	_ = v.BindEnv("sync.ensure_roles", "ENSURE_ROLES")
	_ = v.BindEnv("sync.dry_run", "DRY_RUN")
	_ = v.BindEnv("sync.interval", "SYNC_INTERVAL")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("metrics.namespace", "METRICS_NAMESPACE")
	_ = v.BindEnv("metrics.region", "METRICS_REGION")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	// Explicitly map values to avoid tag mismatch issues.
	cfg.AppStore.IssuerID = v.GetString("appstore.issuer_id")
	cfg.AppStore.KeyID = v.GetString("appstore.key_id")
	cfg.AppStore.PrivateKeyFile = v.GetString("appstore.private_key_file")
	cfg.AppStore.PrivateKeySecret = v.GetString("appstore.private_key_secret")
	cfg.AppStore.BaseURL = v.GetString("appstore.base_url")
	cfg.AppStore.TokenTTL = v.GetDuration("appstore.token_ttl")
	cfg.AppStore.Throttle = v.GetDuration("appstore.throttle")
	cfg.AppStore.RequestTimeout = v.GetDuration("appstore.request_timeout")
	cfg.AppStore.MaxMalformedRetries = v.GetInt("appstore.max_malformed_retries")
	cfg.AppStore.MalformedBackoff = v.GetDuration("appstore.malformed_backoff")

	cfg.Google.FormID = v.GetString("google.form_id")
	cfg.Google.CredentialsFile = v.GetString("google.credentials_file")
	cfg.Google.CredentialsSecret = v.GetString("google.credentials_secret")
	cfg.Google.Subject = v.GetString("google.subject")
	cfg.Google.Questions.FirstName = v.GetString("google.questions.first_name")
	cfg.Google.Questions.LastName = v.GetString("google.questions.last_name")
	cfg.Google.Questions.Email = v.GetString("google.questions.email")

	cfg.Sync.BundleIDs = splitList(v.GetStringSlice("sync.bundle_ids"))
	cfg.Sync.InviteRoles = splitList(v.GetStringSlice("sync.invite_roles"))
	cfg.Sync.EnsureRoles = v.GetBool("sync.ensure_roles")
	cfg.Sync.DryRun = v.GetBool("sync.dry_run")
	cfg.Sync.Interval = v.GetDuration("sync.interval")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	cfg.Metrics.Namespace = v.GetString("metrics.namespace")
	cfg.Metrics.Region = v.GetString("metrics.region")

	cfg.IsLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	return cfg, nil
}

// splitList flattens comma separated entries, since list values read from
// the environment arrive as a single string.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
