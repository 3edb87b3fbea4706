package config

import (
	"fmt"
	"strings"

	"github.com/daniloc96/appstore-testflight-sync/internal/models"
)

var knownRoles = map[models.UserRole]struct{}{
	models.RoleAdmin:           {},
	models.RoleFinance:         {},
	models.RoleAccountHolder:   {},
	models.RoleSales:           {},
	models.RoleMarketing:       {},
	models.RoleAppManager:      {},
	models.RoleDeveloper:       {},
	models.RoleAccessToReports: {},
	models.RoleCustomerSupport: {},
}

// Validate ensures configuration is complete and well-formed.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	var errs []string

	requireNonEmpty := func(value string, field string) {
		if value == "" {
			errs = append(errs, fmt.Sprintf("%s is required", field))
		}
	}

	requireNonEmpty(cfg.AppStore.IssuerID, "appstore.issuer_id")
	requireNonEmpty(cfg.AppStore.KeyID, "appstore.key_id")
	requireNonEmpty(cfg.AppStore.BaseURL, "appstore.base_url")
	requireNonEmpty(cfg.Google.FormID, "google.form_id")
	requireNonEmpty(cfg.Google.Questions.FirstName, "google.questions.first_name")
	requireNonEmpty(cfg.Google.Questions.LastName, "google.questions.last_name")

	if cfg.IsLambda {
		requireNonEmpty(cfg.AppStore.PrivateKeySecret, "appstore.private_key_secret")
		requireNonEmpty(cfg.Google.CredentialsSecret, "google.credentials_secret")
	} else {
		if cfg.AppStore.PrivateKeyFile == "" && cfg.AppStore.PrivateKeySecret == "" {
			errs = append(errs, "appstore.private_key_file or appstore.private_key_secret is required")
		}
		if cfg.Google.CredentialsFile == "" && cfg.Google.CredentialsSecret == "" {
			errs = append(errs, "google.credentials_file or google.credentials_secret is required")
		}
	}

	if cfg.AppStore.Throttle < 0 {
		errs = append(errs, "appstore.throttle must not be negative")
	}
	if cfg.AppStore.RequestTimeout <= 0 {
		errs = append(errs, "appstore.request_timeout must be positive")
	}
	if cfg.AppStore.MaxMalformedRetries <= 0 {
		errs = append(errs, "appstore.max_malformed_retries must be positive")
	}
	if cfg.AppStore.MalformedBackoff < 0 {
		errs = append(errs, "appstore.malformed_backoff must not be negative")
	}
	if cfg.AppStore.TokenTTL <= 0 {
		errs = append(errs, "appstore.token_ttl must be positive")
	}

	if len(cfg.Sync.InviteRoles) == 0 {
		errs = append(errs, "sync.invite_roles must not be empty")
	}
	for _, role := range cfg.Sync.InviteRoles {
		if _, ok := knownRoles[models.UserRole(role)]; !ok {
			errs = append(errs, fmt.Sprintf("sync.invite_roles contains unknown role %q", role))
		}
	}
	if cfg.Sync.Interval < 0 {
		errs = append(errs, "sync.interval must not be negative")
	}

	if cfg.Metrics.Enabled {
		requireNonEmpty(cfg.Metrics.Namespace, "metrics.namespace")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Roles returns the configured invitation roles as typed values.
func (c SyncConfig) Roles() []models.UserRole {
	roles := make([]models.UserRole, 0, len(c.InviteRoles))
	for _, role := range c.InviteRoles {
		roles = append(roles, models.UserRole(role))
	}
	return roles
}
