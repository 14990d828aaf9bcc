package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/kbukum/artifactstore/storage"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		var cfg ServiceConfig
		cfg.ApplyDefaults()
		if cfg.Name != ServiceName || cfg.Environment != "development" || !cfg.Debug {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
		if cfg.Logging.ServiceName != ServiceName {
			t.Errorf("logging service name = %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/etc/artifactstore.yml", `
environment: staging
logging:
  level: debug
  format: json
storage:
  provider: database
  database:
    dsn: /var/lib/docs.db
    compression: zstd
telemetry:
  enabled: false
  interval: 30s
`)

	cfg, err := Load(WithFs(fs), WithConfigFile("/etc/artifactstore.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "staging" || cfg.Logging.Level != "debug" {
		t.Errorf("service section not loaded: %+v", cfg.ServiceConfig)
	}
	if cfg.Storage.Provider != storage.ProviderDatabase {
		t.Errorf("provider = %q", cfg.Storage.Provider)
	}
	if cfg.Storage.Database.DSN != "/var/lib/docs.db" || cfg.Storage.Database.Compression != storage.CompressionZstd {
		t.Errorf("database section = %+v", cfg.Storage.Database)
	}
	if cfg.Storage.Database.Table != storage.DefaultTable {
		t.Errorf("table default not applied: %q", cfg.Storage.Database.Table)
	}
	if cfg.Telemetry.Interval != 30*time.Second {
		t.Errorf("interval = %v", cfg.Telemetry.Interval)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg.yml", `
storage:
  provider: database
  s3:
    bucket: from-file
`)
	t.Setenv("STORAGE_PROVIDER", "s3")
	t.Setenv("STORAGE_S3_FORCE_PATH_STYLE", "true")

	cfg, err := Load(WithFs(fs), WithConfigFile("/cfg.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Provider != storage.ProviderS3 {
		t.Errorf("provider = %q, want s3 from env", cfg.Storage.Provider)
	}
	if cfg.Storage.S3.Bucket != "from-file" {
		t.Errorf("bucket = %q", cfg.Storage.S3.Bucket)
	}
	if !cfg.Storage.S3.ForcePathStyle {
		t.Error("force_path_style not bound from env")
	}
}

func TestLoad_ProviderAutoSelect(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg.yml", "storage:\n  s3:\n    bucket: docs\n")

	cfg, err := Load(WithFs(fs), WithConfigFile("/cfg.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Provider != storage.ProviderS3 {
		t.Errorf("provider = %q, want s3 when a bucket is configured", cfg.Storage.Provider)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "STORAGE_DATABASE_TABLE"
	if _, set := os.LookupEnv(key); set {
		t.Skipf("%s already set", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg.yml", "storage:\n  provider: memory\n")
	writeFile(t, fs, "/app.env", key+"=blobs\n")

	cfg, err := Load(WithFs(fs), WithConfigFile("/cfg.yml"), WithEnvFile("/app.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Database.Table != "blobs" {
		t.Errorf("table = %q, want value from .env", cfg.Storage.Database.Table)
	}
}

func TestLoad_InvalidStorage(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg.yml", "storage:\n  provider: ftp\n")

	_, err := Load(WithFs(fs), WithConfigFile("/cfg.yml"))
	if err == nil || !strings.Contains(err.Error(), "config.storage") {
		t.Errorf("expected storage validation error, got %v", err)
	}
}

func TestLoad_TelemetrySampleRate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    float64
		wantErr bool
	}{
		{"unset", "telemetry:\n  enabled: true\n", 1.0, false},
		{"explicit zero", "telemetry:\n  enabled: true\n  sample_rate: 0\n", 0, false},
		{"ratio", "telemetry:\n  enabled: true\n  sample_rate: 0.5\n", 0.5, false},
		{"out of range", "telemetry:\n  enabled: true\n  sample_rate: 2\n", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/cfg.yml", "storage:\n  provider: memory\n"+tc.yaml)

			cfg, err := Load(WithFs(fs), WithConfigFile("/cfg.yml"))
			if tc.wantErr {
				if err == nil || !strings.Contains(err.Error(), "config.telemetry") {
					t.Errorf("expected telemetry validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := cfg.Telemetry.Rate(); got != tc.want {
				t.Errorf("Rate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(WithFs(afero.NewMemMapFs()), WithConfigFile("/nonexistent.yml"))
	if err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_NoFiles(t *testing.T) {
	cfg, err := Load(WithFs(afero.NewMemMapFs()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Provider != storage.ProviderDatabase {
		t.Errorf("provider = %q, want database default", cfg.Storage.Provider)
	}
}

func TestResolver_Search(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "./cmd/artifactstore/config.yml", "")
	writeFile(t, fs, "./config/.env", "")

	files := (&Resolver{Fs: fs}).ResolveFiles("artifactstore", LoaderConfig{})
	if files.ConfigFile != "./cmd/artifactstore/config.yml" {
		t.Errorf("config file = %q", files.ConfigFile)
	}
	if files.EnvFile != "./config/.env" {
		t.Errorf("env file = %q", files.EnvFile)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("STORAGE_S3_ACCESS_KEY")
	for _, want := range []string{"storage_s3_access_key", "storage.s3.access_key", "storage.s3_access_key"} {
		found := false
		for _, v := range got {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Errorf("variants %v missing %q", got, want)
		}
	}
	if got := generateEnvKeyVariants("DEBUG"); len(got) != 1 || got[0] != "debug" {
		t.Errorf("single-part variants = %v", got)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := afero.NewMemMapFs()
	WithFs(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.Fs != fs || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("options not applied: %+v", lc)
	}
}
