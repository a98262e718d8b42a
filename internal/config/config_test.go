package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory so a stray .env is not picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "60", cfg.CountryCode)
	assert.Equal(t, 5*time.Second, cfg.InterMessageDelay)
	assert.Equal(t, "sent_numbers.txt", cfg.SentLog)
	assert.Equal(t, "bulksend.db", cfg.Journal)
	assert.Equal(t, "M Suites", cfg.DefaultProject)
	assert.Equal(t, 30, cfg.DefaultPacing)
	assert.Equal(t, "stub", cfg.Gateway.Kind)
}

func TestLoad_YAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bulksend.yaml")
	content := `
country_code: "65"
inter_message_delay: 2s
sent_log: state/sent.txt
default_pacing: 45
gateway:
  kind: command
  command: /usr/local/bin/wa-send
  args: ["--to", "{number}"]
templates:
  - name: Tower
    message: Hello from Tower
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "65", cfg.CountryCode)
	assert.Equal(t, 2*time.Second, cfg.InterMessageDelay)
	assert.Equal(t, "state/sent.txt", cfg.SentLog)
	assert.Equal(t, 45, cfg.DefaultPacing)
	assert.Equal(t, Gateway{Kind: "command", Command: "/usr/local/bin/wa-send", Args: []string{"--to", "{number}"}}, cfg.Gateway)

	cat, err := cfg.Catalogue()
	require.NoError(t, err)
	assert.Equal(t, []string{"Tower"}, cat.Names())
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bulksend.yaml")
	require.NoError(t, os.WriteFile(path, []byte("country_cod: \"60\"\n"), 0644))

	_, err := Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "country_cod")
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)

	_, err := Load("does-not-exist.yaml", "")
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("BULKSEND_COUNTRY_CODE", "62")
	t.Setenv("BULKSEND_SENT_LOG", "/var/lib/bulksend/sent.txt")
	t.Setenv("BULKSEND_INTER_MESSAGE_DELAY", "1s")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "62", cfg.CountryCode)
	assert.Equal(t, "/var/lib/bulksend/sent.txt", cfg.SentLog)
	assert.Equal(t, time.Second, cfg.InterMessageDelay)
}

func TestLoad_BadDelayEnv(t *testing.T) {
	isolate(t)
	t.Setenv("BULKSEND_INTER_MESSAGE_DELAY", "soon")

	_, err := Load("", "")
	assert.ErrorContains(t, err, "BULKSEND_INTER_MESSAGE_DELAY")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BULKSEND_JOURNAL=from-dotenv.db\n"), 0644))
	t.Setenv("BULKSEND_JOURNAL", "") // registered for cleanup; godotenv skips set vars
	os.Unsetenv("BULKSEND_JOURNAL")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Journal)
}

func TestLoad_ExplicitEnvFileMissing(t *testing.T) {
	isolate(t)

	_, err := Load("", "missing.env")
	assert.ErrorContains(t, err, "failed to load env file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"non-digit country code", func(c *Config) { c.CountryCode = "+60" }, "digits only"},
		{"empty country code", func(c *Config) { c.CountryCode = "" }, "country_code is required"},
		{"negative delay", func(c *Config) { c.InterMessageDelay = -time.Second }, "must not be negative"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"command without path", func(c *Config) { c.Gateway = Gateway{Kind: "command"} }, "gateway.command is required"},
		{"unknown gateway", func(c *Config) { c.Gateway.Kind = "pigeon" }, "gateway.kind"},
		{"bad pacing", func(c *Config) { c.DefaultPacing = 12 }, "default_pacing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPacingChoices(t *testing.T) {
	assert.Equal(t, []int{10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60}, PacingChoices())
}

func TestValidatePacing(t *testing.T) {
	for _, s := range PacingChoices() {
		assert.NoError(t, ValidatePacing(s))
	}
	for _, s := range []int{0, 5, 11, 65, -10} {
		assert.ErrorIs(t, ValidatePacing(s), ErrInvalidPacing)
	}
}
