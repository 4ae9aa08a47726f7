package interfaces

import (
	"context"

	"portfolio-api/internal/trades"
	"portfolio-api/internal/types"
)

// Portfolio answers dashboard queries for the configured accounts. Calls
// never fail because of the brokerage; unavailable data degrades to empty or
// null values.
type Portfolio interface {
	Algorithms(ctx context.Context) []types.Algorithm
	Algorithm(ctx context.Context, accountID int) types.Algorithm
	Trades(ctx context.Context, accountID int) trades.Result
	Stats(ctx context.Context, accountID int) types.TradeStats
	Metrics(ctx context.Context, accountID int) types.Metrics
	LiveEquity(ctx context.Context, accountID int) (types.LiveEquity, bool)
	Performance(ctx context.Context, accountID int, window types.HistoryWindow) types.Performance
	Health(ctx context.Context) []types.AccountHealth
}
