package config

import "time"

// Config holds all configuration for the sync operation.
type Config struct {
	AppStore AppStoreConfig `json:"appstore"`
	Google   GoogleConfig   `json:"google"`
	Sync     SyncConfig     `json:"sync"`
	Log      LogConfig      `json:"log"`
	Metrics  MetricsConfig  `json:"metrics"`
	IsLambda bool           `json:"-"`
}

// AppStoreConfig holds App Store Connect API settings.
type AppStoreConfig struct {
	IssuerID            string        `json:"issuer_id"`
	KeyID               string        `json:"key_id"`
	PrivateKeyFile      string        `json:"private_key_file,omitempty"`
	PrivateKeySecret    string        `json:"private_key_secret,omitempty"`
	BaseURL             string        `json:"base_url"`
	TokenTTL            time.Duration `json:"token_ttl"`
	Throttle            time.Duration `json:"throttle"`
	RequestTimeout      time.Duration `json:"request_timeout"`
	MaxMalformedRetries int           `json:"max_malformed_retries"`
	MalformedBackoff    time.Duration `json:"malformed_backoff"`
}

// GoogleConfig holds Google Forms settings.
type GoogleConfig struct {
	FormID            string          `json:"form_id"`
	CredentialsFile   string          `json:"credentials_file,omitempty"`
	CredentialsSecret string          `json:"credentials_secret,omitempty"`
	Subject           string          `json:"subject,omitempty"`
	Questions         QuestionsConfig `json:"questions"`
}

// QuestionsConfig maps candidate fields to form question IDs.
type QuestionsConfig struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

// SyncConfig holds sync behavior settings.
type SyncConfig struct {
	BundleIDs   []string      `json:"bundle_ids"`
	InviteRoles []string      `json:"invite_roles"`
	EnsureRoles bool          `json:"ensure_roles"`
	DryRun      bool          `json:"dry_run"`
	Interval    time.Duration `json:"interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// MetricsConfig holds CloudWatch metrics settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace"`
	Region    string `json:"region,omitempty"`
}
