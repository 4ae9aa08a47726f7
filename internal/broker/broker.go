// Package broker builds the per-account brokerage clients.
package broker

import (
	"context"
	"errors"
	"fmt"

	"portfolio-api/internal/broker/alpaca"
	"portfolio-api/internal/broker/brokerobs"
	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/store"
	"portfolio-api/internal/types"
)

// ErrUnavailable is returned by every call on an account whose credentials
// are not configured.
var ErrUnavailable = errors.New("broker unavailable: credentials not configured")

type unavailable struct{ account int }

var _ interfaces.Broker = unavailable{}

func (u unavailable) err() error {
	return fmt.Errorf("account %d: %w", u.account, ErrUnavailable)
}

func (u unavailable) ListOrders(context.Context, types.OrderStatus, int) ([]types.RawOrder, error) {
	return nil, u.err()
}

func (u unavailable) ListPositions(context.Context) ([]types.Position, error) {
	return nil, u.err()
}

func (u unavailable) AccountSummary(context.Context) (types.AccountSummary, error) {
	return types.AccountSummary{}, u.err()
}

func (u unavailable) EquityHistory(context.Context, types.HistoryWindow) (types.EquityHistory, error) {
	return types.EquityHistory{}, u.err()
}

// Unavailable returns a broker that fails every call with ErrUnavailable.
func Unavailable(account int) interfaces.Broker {
	return unavailable{account: account}
}

// IsUnavailable reports whether b was built without credentials.
func IsUnavailable(b interfaces.Broker) bool {
	_, ok := b.(unavailable)
	return ok
}

// New returns the account's Alpaca broker, or an unavailable one when its
// keys are missing from the environment.
func New(acct store.AccountConfig, cfg *store.Config) interfaces.Broker {
	creds := acct.Credentials()
	if !creds.Configured() {
		return Unavailable(acct.ID)
	}
	return alpaca.New(alpaca.Params{
		APIKey:        creds.APIKey,
		SecretKey:     creds.SecretKey,
		BaseURL:       creds.BaseURL,
		Timeout:       cfg.Timeout(),
		RatePerMinute: cfg.Broker.RatePerMinute,
	})
}

// NewAll builds one observed broker per configured account.
func NewAll(cfg *store.Config) map[int]interfaces.Broker {
	out := make(map[int]interfaces.Broker, len(cfg.Accounts))
	for _, acct := range cfg.Accounts {
		b := New(acct, cfg)
		if IsUnavailable(b) {
			out[acct.ID] = b
			continue
		}
		out[acct.ID] = brokerobs.Wrap(b, acct.ID)
	}
	return out
}
