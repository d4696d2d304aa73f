package main

import (
	"Shortly-Backend/internal/auth"
	"Shortly-Backend/internal/config"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{Env: "test"}
	cfg.Database.Driver = "memory"
	cfg.URLShortener.BaseURL = "http://sho.rt"
	cfg.URLShortener.CodeLength = 6
	cfg.URLShortener.CodeStrategy = "random"
	cfg.Auth = config.Auth{JWTSecret: "cli-secret", Issuer: "Shortly-Backend", AccessTokenTTL: time.Hour}
	return cfg
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	cfg := testConfig()

	out, err := run(t, cfg, "token", "--user-id", "5", "--email", "ops@example.com")
	require.NoError(t, err)

	claims, err := auth.NewJWTService(&cfg.Auth).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
}

func TestTokenCmd_RequiresEmail(t *testing.T) {
	_, err := run(t, testConfig(), "token")
	assert.Error(t, err)
}

func TestMigrateAndListCmd(t *testing.T) {
	cfg := testConfig()

	out, err := run(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = run(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
}

func TestCreateCmd_InvalidURL(t *testing.T) {
	_, err := run(t, testConfig(), "create", "--url", "not a url")
	assert.Error(t, err)
}
