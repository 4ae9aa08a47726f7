package interfaces

import (
	"context"

	"portfolio-api/internal/types"
)

// Broker is the read-only view of one brokerage account.
type Broker interface {
	ListOrders(ctx context.Context, status types.OrderStatus, limit int) ([]types.RawOrder, error)
	ListPositions(ctx context.Context) ([]types.Position, error)
	AccountSummary(ctx context.Context) (types.AccountSummary, error)
	EquityHistory(ctx context.Context, window types.HistoryWindow) (types.EquityHistory, error)
}
