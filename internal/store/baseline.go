package store

import (
	"context"
	"time"

	"portfolio-api/internal/logger"
	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
)

const DefaultBaselineStart = "2024-01-01T00:00:00Z"

var (
	// DefaultBaselineEquity applies to accounts with no configured baseline.
	DefaultBaselineEquity = decimal.NewFromInt(100000)

	// FallbackBaselineStart is used when a stored start cannot be parsed. It
	// only widens the filter window, it never changes matching.
	FallbackBaselineStart = types.NewTimestamp(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
)

// Baselines holds the per-account reset point. It is read-only after
// construction and safe for concurrent use.
type Baselines struct {
	byAccount map[int]types.Baseline
}

func NewBaselines(accounts []AccountConfig) *Baselines {
	b := &Baselines{byAccount: make(map[int]types.Baseline, len(accounts))}
	for _, a := range accounts {
		b.byAccount[a.ID] = types.Baseline{
			AccountID: a.ID,
			StartISO:  a.Baseline.Start,
			Equity:    a.Baseline.Equity,
		}
	}
	return b
}

// Get returns the configured baseline, or the default one for unknown ids.
func (b *Baselines) Get(accountID int) types.Baseline {
	if bl, ok := b.byAccount[accountID]; ok {
		return bl
	}
	return types.Baseline{
		AccountID: accountID,
		StartISO:  DefaultBaselineStart,
		Equity:    DefaultBaselineEquity,
	}
}

// Start parses the baseline start instant for an account, degrading to
// FallbackBaselineStart on malformed input.
func (b *Baselines) Start(ctx context.Context, accountID int) types.Timestamp {
	bl := b.Get(accountID)
	ts, err := types.ParseTimestamp(bl.StartISO)
	if err != nil {
		logger.Warn(ctx, "Invalid baseline start, using fallback",
			"account", accountID,
			"baseline_start", bl.StartISO,
			"fallback", FallbackBaselineStart.String(),
			"error", err,
		)
		return FallbackBaselineStart
	}
	return ts
}
