package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
serverAddr: ":9000"
site:
  name: Example
  baseURL: https://example.com
auth:
  adminEmail: owner@example.com
  tokenSecret: from-file
  adminPassword: file-password
postgres:
  host: db
  dbname: portal
notify:
  approvalEmailPolicy: required
scraper:
  mode: http
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, "Example", cfg.Site.Name)
	assert.Equal(t, "owner@example.com", cfg.Auth.AdminEmail)
	assert.Equal(t, EmailPolicyRequired, cfg.Notify.ApprovalEmailPolicy)
	assert.Equal(t, ScraperModeHTTP, cfg.Scraper.Mode)
	// untouched defaults survive
	assert.Equal(t, 12, cfg.Auth.AdminTokenHours)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, 60, cfg.Scraper.TimeoutSeconds)
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "postgres://u:p@h/db")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SCRAPER_API_KEY", "key")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.TokenSecret)
	assert.Equal(t, "postgres://u:p@h/db", cfg.Postgres.URL)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "key", cfg.Scraper.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tokenSecret")
	assert.Contains(t, err.Error(), "adminPassword")

	cfg.Auth.TokenSecret = "s"
	cfg.Auth.AdminPasswordHash = "$2a$10$hash"
	assert.NoError(t, cfg.Validate())

	cfg.Notify.ApprovalEmailPolicy = "sometimes"
	cfg.Scraper.Mode = "browser"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "approvalEmailPolicy")
	assert.Contains(t, err.Error(), "scraper.mode")
}

func TestSMTPEnabledAndTokenConf(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.SMTPEnabled())
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.From = "noreply@example.com"
	assert.True(t, cfg.SMTPEnabled())

	cfg.Auth.TokenSecret = "s"
	tc := NewTokenConf(cfg)
	assert.Equal(t, "s", tc.Secret)
	assert.Equal(t, 12*60*60, int(tc.AdminTokenTTL.Seconds()))
	assert.Equal(t, 72*60*60, int(tc.InviteTokenTTL.Seconds()))
}
