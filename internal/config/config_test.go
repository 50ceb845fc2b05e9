package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-intern-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"PORT", "API_BASE_URL", "API_TIMEOUT", "CREDENTIAL_STORE", "RESUME_EXTENSIONS", "ENV"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
	require.Equal(t, 30*time.Second, c.GetAPITimeout())
	require.Equal(t, config.CredentialStoreFile, c.GetCredentialStore())
	require.Equal(t, "token", c.GetCredentialKey())
	require.Equal(t, []string{".pdf", ".docx"}, c.GetResumeExtensions())
	require.Equal(t, "DEV", c.GetEnv())
}

func TestPortFormatting(t *testing.T) {
	t.Setenv("PORT", "8081")
	require.Equal(t, ":8081", config.New().GetPort())

	t.Setenv("PORT", ":9090")
	require.Equal(t, ":9090", config.New().GetPort())
}

func TestCredentialStoreFallsBackToFile(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE", "redis")
	require.Equal(t, config.CredentialStoreRedis, config.New().GetCredentialStore())

	t.Setenv("CREDENTIAL_STORE", "etcd")
	require.Equal(t, config.CredentialStoreFile, config.New().GetCredentialStore())
}

func TestAPITimeoutFormats(t *testing.T) {
	t.Setenv("API_TIMEOUT", "5s")
	require.Equal(t, 5*time.Second, config.New().GetAPITimeout())

	t.Setenv("API_TIMEOUT", "12")
	require.Equal(t, 12*time.Second, config.New().GetAPITimeout())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("http://a.test"))
	require.True(t, origins.IsAllowedOrigin("http://b.test"))
	require.False(t, origins.IsAllowedOrigin("http://c.test"))
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "portal.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORTAL_TEST_APP_NAME=Portal Test\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PORTAL_TEST_APP_NAME") })

	_, err := config.Load(envFile)
	require.NoError(t, err)
	require.Equal(t, "Portal Test", os.Getenv("PORTAL_TEST_APP_NAME"))
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.NotNil(t, c)
}
