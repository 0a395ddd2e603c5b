package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfigLayersEnvOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: localhost
  port: "5432"
server:
  port: "8085"
`)
	writeFile(t, dir, "prod.yaml", `
db:
  host: db.internal
`)

	cfg, err := LoadConfig("prod", dir)
	require.NoError(t, err)

	db := cfg["db"].(map[string]interface{})
	assert.Equal(t, "db.internal", db["host"])
	assert.Equal(t, "5432", db["port"])

	server := cfg["server"].(map[string]interface{})
	assert.Equal(t, "8085", server["port"])
}

func TestLoadConfigMissingOverlayIsFine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: \"8085\"\n")

	cfg, err := LoadConfig("staging", dir)
	require.NoError(t, err)
	assert.NotNil(t, cfg["server"])
}

func TestLoadConfigSubstitutesSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  password: ${DB_PASSWORD}
jwt:
  secret: ${JWT_SECRET}
`)
	writeFile(t, dir, "secrets.env", `
# local development secrets
DB_PASSWORD=hunter2
JWT_SECRET="quoted-secret"
`)

	cfg, err := LoadConfig("local", dir)
	require.NoError(t, err)

	db := cfg["db"].(map[string]interface{})
	assert.Equal(t, "hunter2", db["password"])
	jwt := cfg["jwt"].(map[string]interface{})
	assert.Equal(t, "quoted-secret", jwt["secret"])
}

func TestLoadConfigMissingBaseFails(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	assert.Error(t, err)
}

func TestOverrideDBFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "override-host")

	cfg := DBConfig{Host: "localhost", Port: 5432}
	OverrideDBFromEnv(&cfg)

	assert.Equal(t, "override-host", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
}

func TestGetEnvDefault(t *testing.T) {
	assert.Equal(t, "fallback", GetEnv("NOTIFYHUB_TEST_UNSET_VAR", "fallback"))

	t.Setenv("NOTIFYHUB_TEST_SET_VAR", "set")
	assert.Equal(t, "set", GetEnv("NOTIFYHUB_TEST_SET_VAR", "fallback"))
}
