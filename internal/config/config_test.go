package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validConfig = `
app:
  name: boardeasy
  environment: test
telegram:
  bot_token: "123456:test-token"
backend:
  base_url: "https://api.boardeasy.test"
database:
  path: "/tmp/boardeasy-test.db"
fares:
  service_fee: 2500
  coupons:
    SAVE10: 10
    FIRST20: 20
bot:
  pagination_size: 5
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "boardeasy", cfg.App.Name)
	assert.Equal(t, "https://api.boardeasy.test", cfg.Backend.BaseURL)
	assert.Equal(t, 5, cfg.Bot.PaginationSize)
	assert.Equal(t, 10, cfg.Fares.Coupons["SAVE10"])
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
telegram:
  bot_token: "123456:test-token"
backend:
  base_url: "https://api.boardeasy.test"
database:
  path: "/tmp/boardeasy-test.db"
`))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, defaultPaginationSize, cfg.Bot.PaginationSize)
	assert.Equal(t, defaultDraftTTLSeconds, cfg.Bot.DraftTTLSeconds)
	assert.Equal(t, int64(defaultServiceFee), cfg.Fares.ServiceFee)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123456:from-env")
	cfg, err := Load(writeConfig(t, `
telegram:
  bot_token: "${TEST_BOT_TOKEN}"
backend:
  base_url: "https://api.boardeasy.test"
database:
  path: "/tmp/boardeasy-test.db"
`))
	require.NoError(t, err)
	assert.Equal(t, "123456:from-env", cfg.Telegram.BotToken)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Telegram.BotToken = "" }},
		{"relative backend url", func(c *Config) { c.Backend.BaseURL = "api.boardeasy.test" }},
		{"missing database path", func(c *Config) { c.Database.Path = "" }},
		{"zero page size", func(c *Config) { c.Bot.PaginationSize = -1 }},
		{"coupon percent out of range", func(c *Config) { c.Fares.Coupons = map[string]int{"BAD": 150} }},
		{"google without credentials", func(c *Config) { c.Google.Enabled = true }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validConfig))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
