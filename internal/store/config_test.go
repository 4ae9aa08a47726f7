package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10, cfg.Server.TradesLimit)
	assert.Equal(t, 8, cfg.Broker.TimeoutSeconds)
	assert.Equal(t, AssetClassEquity, cfg.Accounts[0].AssetClass)
	assert.Equal(t, AssetClassCrypto, cfg.Accounts[1].AssetClass)
	assert.Equal(t, "ALPACA_API_KEY_2", cfg.Accounts[1].APIKeyEnv)
	assert.Equal(t, "10000", cfg.Accounts[0].Baseline.Equity.String())
}

func TestPortOverridesAddr(t *testing.T) {
	t.Setenv("PORT", "8080")
	assert.Equal(t, ":8080", DefaultConfig().Server.Addr)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Accounts, 2)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
server:
  allowed_origins: ["https://dash.example.com"]
broker:
  timeout_seconds: 3
accounts:
  - id: 7
    name: Solo
    keywords: [solo]
    baseline:
      start: "2025-01-01T00:00:00Z"
      equity: 2500
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3, int(cfg.Timeout().Seconds()))
	assert.Equal(t, 1000, cfg.Broker.OrderLimit)
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, AssetClassEquity, cfg.Accounts[0].AssetClass)
	assert.Equal(t, "2025-01-01T00:00:00Z", cfg.Accounts[0].Baseline.Start)
	assert.Equal(t, "2500", cfg.Accounts[0].Baseline.Equity.String())
}

func TestLoadConfigKeepsBaselineEquityExact(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
accounts:
  - id: 1
    name: Precise
    baseline:
      equity: 10000.10
  - id: 2
    name: Quoted
    baseline:
      equity: "0.30"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// 10000.10 has no exact float64 form; it must arrive as written.
	assert.True(t, decimal.RequireFromString("10000.10").Equal(cfg.Accounts[0].Baseline.Equity))
	assert.True(t, decimal.RequireFromString("0.3").Equal(cfg.Accounts[1].Baseline.Equity))
	assert.True(t, NewBaselines(cfg.Accounts).Get(1).Equity.Equal(decimal.RequireFromString("10000.1")))
}

func TestLoadConfigRejectsNegativeBaseline(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
accounts:
  - id: 1
    name: Broken
    baseline:
      equity: -5
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseline.equity must be >= 0, got -5")
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "accounts: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no accounts", func(c *Config) { c.Accounts = nil }, "accounts cannot be empty"},
		{"duplicate id", func(c *Config) { c.Accounts[1].ID = 1 }, "duplicate account id 1"},
		{"empty name", func(c *Config) { c.Accounts[0].Name = "" }, "name cannot be empty"},
		{"bad asset class", func(c *Config) { c.Accounts[0].AssetClass = "forex" }, "invalid asset_class 'forex'"},
		{"negative baseline", func(c *Config) { c.Accounts[1].Baseline.Equity = decimal.NewFromInt(-1) }, "baseline.equity must be >= 0"},
		{"zero timeout", func(c *Config) { c.Broker.TimeoutSeconds = 0 }, "timeout_seconds must be > 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveAccount(t *testing.T) {
	cfg := DefaultConfig()
	tests := map[string]int{
		"Swing Trading Agent": 1,
		"swing":               1,
		"Coin Trading Agent":  2,
		"coin trading agent":  2,
		"My Crypto Bot":       2,
		"something else":      1,
	}
	for name, want := range tests {
		assert.Equal(t, want, cfg.ResolveAccount(name).ID, name)
	}

	empty := &Config{}
	assert.Zero(t, empty.ResolveAccount("anything").ID)
}

func TestAccountLookup(t *testing.T) {
	cfg := DefaultConfig()
	a, ok := cfg.Account(2)
	require.True(t, ok)
	assert.Equal(t, "Coin Trading Agent", a.Name)

	_, ok = cfg.Account(3)
	assert.False(t, ok)
}

func TestCredentials(t *testing.T) {
	a := DefaultConfig().Accounts[0]

	t.Setenv("ALPACA_API_KEY", "")
	t.Setenv("ALPACA_SECRET_KEY", "")
	t.Setenv("ALPACA_BASE_URL", "")
	c := a.Credentials()
	assert.False(t, c.Configured())
	assert.Equal(t, defaultBaseURL, c.BaseURL)
	assert.True(t, c.Paper())

	t.Setenv("ALPACA_API_KEY", "key")
	t.Setenv("ALPACA_SECRET_KEY", "secret")
	t.Setenv("ALPACA_BASE_URL", "https://api.alpaca.markets")
	c = a.Credentials()
	assert.True(t, c.Configured())
	assert.False(t, c.Paper())
}
