package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	AssetClassEquity = "us_equity"
	AssetClassCrypto = "crypto"

	defaultBaseURL = "https://paper-api.alpaca.markets"
)

type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		TradesLimit    int      `yaml:"trades_limit"`
	} `yaml:"server"`
	Broker struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
		OrderLimit     int `yaml:"order_limit"`
		RatePerMinute  int `yaml:"rate_per_minute"`
	} `yaml:"broker"`
	Accounts []AccountConfig `yaml:"accounts"`
}

// AccountConfig describes one brokerage account shown on the dashboard.
// Credentials are never stored in the file; only the env var names are.
type AccountConfig struct {
	ID           int      `yaml:"id"`
	Name         string   `yaml:"name"`
	Strategy     string   `yaml:"strategy"`
	Description  string   `yaml:"description"`
	AssetClass   string   `yaml:"asset_class"`
	Keywords     []string `yaml:"keywords"`
	APIKeyEnv    string   `yaml:"api_key_env"`
	SecretKeyEnv string   `yaml:"secret_key_env"`
	BaseURLEnv   string   `yaml:"base_url_env"`
	Baseline     struct {
		Start  string          `yaml:"start"`
		Equity decimal.Decimal `yaml:"equity"`
	} `yaml:"baseline"`
}

type Credentials struct {
	APIKey    string
	SecretKey string
	BaseURL   string
}

func (c Credentials) Configured() bool {
	return c.APIKey != "" && c.SecretKey != ""
}

func (c Credentials) Paper() bool {
	return strings.Contains(strings.ToLower(c.BaseURL), "paper")
}

// Credentials resolves the account's keys from the environment.
func (a AccountConfig) Credentials() Credentials {
	c := Credentials{
		APIKey:    os.Getenv(a.APIKeyEnv),
		SecretKey: os.Getenv(a.SecretKeyEnv),
		BaseURL:   os.Getenv(a.BaseURLEnv),
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	return c
}

// Matches reports whether a dashboard algorithm name refers to this account.
func (a AccountConfig) Matches(name string) bool {
	n := strings.ToLower(name)
	if strings.EqualFold(n, a.Name) {
		return true
	}
	for _, k := range a.Keywords {
		if k != "" && strings.Contains(n, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Broker.TimeoutSeconds) * time.Second
}

// Account returns the account with the given id.
func (c *Config) Account(id int) (AccountConfig, bool) {
	for _, a := range c.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return AccountConfig{}, false
}

// ResolveAccount maps an algorithm name to an account. Unmatched names fall
// back to the first configured account.
func (c *Config) ResolveAccount(name string) AccountConfig {
	for _, a := range c.Accounts {
		if a.Matches(name) {
			return a
		}
	}
	if len(c.Accounts) == 0 {
		return AccountConfig{}
	}
	return c.Accounts[0]
}

func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return errors.New("accounts cannot be empty")
	}
	seen := make(map[int]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		if seen[a.ID] {
			return fmt.Errorf("duplicate account id %d", a.ID)
		}
		seen[a.ID] = true
		if a.Name == "" {
			return fmt.Errorf("account %d: name cannot be empty", a.ID)
		}
		if a.AssetClass != AssetClassEquity && a.AssetClass != AssetClassCrypto {
			return fmt.Errorf("account %d: invalid asset_class '%s': must be '%s' or '%s'", a.ID, a.AssetClass, AssetClassEquity, AssetClassCrypto)
		}
		if a.Baseline.Equity.IsNegative() {
			return fmt.Errorf("account %d: baseline.equity must be >= 0, got %s", a.ID, a.Baseline.Equity)
		}
	}
	if c.Broker.TimeoutSeconds <= 0 {
		return fmt.Errorf("broker.timeout_seconds must be > 0, got %d", c.Broker.TimeoutSeconds)
	}
	return nil
}

// DefaultConfig mirrors the two dashboard accounts: a stock swing trader and a
// crypto trader, each with its own Alpaca keys.
func DefaultConfig() *Config {
	var c Config
	c.Accounts = []AccountConfig{
		{
			ID:           1,
			Name:         "Swing Trading Agent",
			Strategy:     "Stocks",
			Description:  "Automated trading agent trained on historical data regarding momentum and mean reversion. Continuously monitors technical indicators for 200 stocks and executes trades based on price action patterns and learned thresholds.",
			AssetClass:   AssetClassEquity,
			Keywords:     []string{"swing"},
			APIKeyEnv:    "ALPACA_API_KEY",
			SecretKeyEnv: "ALPACA_SECRET_KEY",
			BaseURLEnv:   "ALPACA_BASE_URL",
		},
		{
			ID:           2,
			Name:         "Coin Trading Agent",
			Strategy:     "Crypto",
			Description:  "Automated trading agent trained on historical data for different cryptocurrency strategies, accounting for higher volatility and lower liquidity. Monitors indicators for 60 coins and executes trades based on predefined, risk-managed signals.",
			AssetClass:   AssetClassCrypto,
			Keywords:     []string{"crypto", "coin"},
			APIKeyEnv:    "ALPACA_API_KEY_2",
			SecretKeyEnv: "ALPACA_SECRET_KEY_2",
			BaseURLEnv:   "ALPACA_BASE_URL_2",
		},
	}
	for i := range c.Accounts {
		c.Accounts[i].Baseline.Start = DefaultBaselineStart
		c.Accounts[i].Baseline.Equity = decimal.NewFromInt(10000)
	}
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.TradesLimit == 0 {
		c.Server.TradesLimit = 10
	}
	if c.Broker.TimeoutSeconds == 0 {
		c.Broker.TimeoutSeconds = 8
	}
	if c.Broker.OrderLimit == 0 {
		c.Broker.OrderLimit = 1000
	}
	if c.Broker.RatePerMinute == 0 {
		c.Broker.RatePerMinute = 200
	}
	for i := range c.Accounts {
		if c.Accounts[i].AssetClass == "" {
			c.Accounts[i].AssetClass = AssetClassEquity
		}
		if c.Accounts[i].Baseline.Start == "" {
			c.Accounts[i].Baseline.Start = DefaultBaselineStart
		}
	}
}

// LoadConfig reads the YAML config at path. A missing file yields
// DefaultConfig so the service can run from environment variables alone.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
