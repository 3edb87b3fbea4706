package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidateConfig(t *testing.T) {
	validLocal := Config{
		AppStore: AppStoreConfig{
			IssuerID:            "issuer-uuid",
			KeyID:               "KEY123",
			PrivateKeyFile:      "/tmp/AuthKey.p8",
			BaseURL:             "https://api.appstoreconnect.apple.com",
			TokenTTL:            10 * time.Minute,
			Throttle:            time.Second,
			RequestTimeout:      time.Minute,
			MaxMalformedRetries: 5,
			MalformedBackoff:    time.Second,
		},
		Google: GoogleConfig{
			FormID:          "form-id",
			CredentialsFile: "/tmp/creds.json",
			Questions:       QuestionsConfig{FirstName: "q1", LastName: "q2", Email: "q3"},
		},
		Sync: SyncConfig{
			BundleIDs:   []string{"com.x.y"},
			InviteRoles: []string{"SALES"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}

	cases := []struct {
		name     string
		cfg      Config
		isLambda bool
		wantErr  bool
	}{
		{
			name:     "valid local config",
			cfg:      validLocal,
			isLambda: false,
			wantErr:  false,
		},
		{
			name: "missing issuer id",
			cfg: func() Config {
				c := validLocal
				c.AppStore.IssuerID = ""
				return c
			}(),
			wantErr: true,
		},
		{
			name: "missing form id",
			cfg: func() Config {
				c := validLocal
				c.Google.FormID = ""
				return c
			}(),
			wantErr: true,
		},
		{
			name: "unknown invite role",
			cfg: func() Config {
				c := validLocal
				c.Sync.InviteRoles = []string{"SALES", "WIZARD"}
				return c
			}(),
			wantErr: true,
		},
		{
			name: "no retry budget",
			cfg: func() Config {
				c := validLocal
				c.AppStore.MaxMalformedRetries = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "missing private key",
			cfg: func() Config {
				c := validLocal
				c.AppStore.PrivateKeyFile = ""
				return c
			}(),
			wantErr: true,
		},
		{
			name: "metrics without namespace",
			cfg: func() Config {
				c := validLocal
				c.Metrics = MetricsConfig{Enabled: true}
				return c
			}(),
			wantErr: true,
		},
		{
			name: "lambda missing secrets",
			cfg: func() Config {
				c := validLocal
				c.AppStore.PrivateKeyFile = ""
				c.Google.CredentialsFile = ""
				return c
			}(),
			isLambda: true,
			wantErr:  true,
		},
		{
			name: "valid lambda config",
			cfg: func() Config {
				c := validLocal
				c.AppStore.PrivateKeyFile = ""
				c.Google.CredentialsFile = ""
				c.AppStore.PrivateKeySecret = "asc-key"
				c.Google.CredentialsSecret = "google-creds"
				return c
			}(),
			isLambda: true,
			wantErr:  false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.IsLambda = tc.isLambda
			err := Validate(&cfg)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestLoadDefaultsAndEnvironment(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	t.Setenv("ASC_ISSUER_ID", "issuer-uuid")
	t.Setenv("BUNDLE_IDS", "com.x.y, com.x.z")
	t.Setenv("SYNC_INTERVAL", "30s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AppStore.IssuerID != "issuer-uuid" {
		t.Fatalf("expected issuer from env, got %q", cfg.AppStore.IssuerID)
	}
	if len(cfg.Sync.BundleIDs) != 2 || cfg.Sync.BundleIDs[1] != "com.x.z" {
		t.Fatalf("expected two bundle ids, got %v", cfg.Sync.BundleIDs)
	}
	if cfg.Sync.Interval != 30*time.Second {
		t.Fatalf("expected 30s interval, got %v", cfg.Sync.Interval)
	}
	if cfg.AppStore.Throttle != time.Second {
		t.Fatalf("expected default throttle of 1s, got %v", cfg.AppStore.Throttle)
	}
	if len(cfg.Sync.InviteRoles) != 1 || cfg.Sync.InviteRoles[0] != "SALES" {
		t.Fatalf("expected default SALES role, got %v", cfg.Sync.InviteRoles)
	}
	if cfg.Sync.DryRun {
		t.Fatalf("expected dry run to default to false")
	}
	if cfg.IsLambda {
		t.Fatalf("expected non-lambda mode")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
appstore:
  key_id: KEY123
google:
  form_id: form-from-file
  questions:
    first_name: q1
sync:
  bundle_ids: [com.a.b]
  dry_run: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AppStore.KeyID != "KEY123" || cfg.Google.FormID != "form-from-file" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Google.Questions.FirstName != "q1" {
		t.Fatalf("expected nested question id, got %q", cfg.Google.Questions.FirstName)
	}
	if len(cfg.Sync.BundleIDs) != 1 || cfg.Sync.BundleIDs[0] != "com.a.b" {
		t.Fatalf("unexpected bundle ids: %v", cfg.Sync.BundleIDs)
	}
	if !cfg.Sync.DryRun {
		t.Fatalf("expected dry run from file")
	}
}

func TestSyncConfigRoles(t *testing.T) {
	roles := SyncConfig{InviteRoles: []string{"SALES", "DEVELOPER"}}.Roles()
	if len(roles) != 2 || roles[1] != "DEVELOPER" {
		t.Fatalf("unexpected roles: %v", roles)
	}
}
