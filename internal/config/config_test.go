package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://token@api.uptrace.dev/1", cfg.UptraceDSN)
}

func TestLoad_FixtureFeedDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("FIXTURE_FEED_TIMEOUT", "")
	t.Setenv("FIXTURE_FEED_MAX_PAGES", "")
	t.Setenv("FIXTURE_FEED_MAX_RETRIES", "")
	t.Setenv("DB_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, cfg.FixtureFeedTimeout)
	require.Equal(t, 100, cfg.FixtureFeedMaxPages)
	require.Equal(t, 2, cfg.FixtureFeedMaxRetries)
	require.True(t, cfg.FixtureFeedCircuitEnabled)
	require.Empty(t, cfg.DBURL)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero pages", key: "FIXTURE_FEED_MAX_PAGES", value: "0"},
		{name: "negative retries", key: "FIXTURE_FEED_MAX_RETRIES", value: "-1"},
		{name: "bad timeout", key: "FIXTURE_FEED_TIMEOUT", value: "soon"},
		{name: "zero workers", key: "LEAGUE_REFRESH_WORKERS", value: "0"},
		{name: "zero cache ttl", key: "CACHE_TTL", value: "0s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv("UPTRACE_ENABLED", "false")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_ProdRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_HTTP_ADDR=:9999\nFIXTURE_FEED_URL=https://feed.example.com/matches\n"), 0o600))

	t.Setenv("APP_HTTP_ADDR", ":7070")
	t.Setenv("FIXTURE_FEED_URL", "")
	require.NoError(t, os.Unsetenv("FIXTURE_FEED_URL"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	require.Equal(t, ":7070", os.Getenv("APP_HTTP_ADDR"))
	require.Equal(t, "https://feed.example.com/matches", os.Getenv("FIXTURE_FEED_URL"))
}
