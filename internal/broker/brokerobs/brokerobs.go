package brokerobs

import (
	"context"

	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/logger"
	"portfolio-api/internal/trace"
	"portfolio-api/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker  interfaces.Broker
	account int
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps an account's broker with observability middleware
func Wrap(broker interfaces.Broker, account int) interfaces.Broker {
	return &observableBroker{
		broker:  broker,
		account: account,
	}
}

func (ob *observableBroker) ListOrders(ctx context.Context, status types.OrderStatus, limit int) ([]types.RawOrder, error) {
	ctx, span := trace.StartSpan(ctx, "broker.ListOrders")
	defer span.End()
	span.SetAttributes(attribute.Int("account", ob.account), attribute.String("status", string(status)))

	logger.DebugSkip(ctx, 1, "Fetching orders", "account", ob.account, "status", status, "limit", limit)

	orders, err := ob.broker.ListOrders(ctx, status, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch orders", err, "account", ob.account)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Orders fetched successfully", "account", ob.account, "count", len(orders))
	return orders, nil
}

func (ob *observableBroker) ListPositions(ctx context.Context) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "broker.ListPositions")
	defer span.End()
	span.SetAttributes(attribute.Int("account", ob.account))

	logger.DebugSkip(ctx, 1, "Fetching positions", "account", ob.account)

	positions, err := ob.broker.ListPositions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err, "account", ob.account)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Positions fetched successfully", "account", ob.account, "count", len(positions))
	return positions, nil
}

func (ob *observableBroker) AccountSummary(ctx context.Context) (types.AccountSummary, error) {
	ctx, span := trace.StartSpan(ctx, "broker.AccountSummary")
	defer span.End()
	span.SetAttributes(attribute.Int("account", ob.account))

	summary, err := ob.broker.AccountSummary(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch account", err, "account", ob.account)
		return types.AccountSummary{}, err
	}

	logger.DebugSkip(ctx, 1, "Account fetched successfully",
		"account", ob.account,
		"equity", summary.Equity.String(),
		"cash", summary.Cash.String(),
	)
	return summary, nil
}

func (ob *observableBroker) EquityHistory(ctx context.Context, window types.HistoryWindow) (types.EquityHistory, error) {
	ctx, span := trace.StartSpan(ctx, "broker.EquityHistory")
	defer span.End()
	span.SetAttributes(attribute.Int("account", ob.account), attribute.String("window", string(window)))

	history, err := ob.broker.EquityHistory(ctx, window)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch equity history", err, "account", ob.account, "window", window)
		return types.EquityHistory{}, err
	}

	logger.DebugSkip(ctx, 1, "Equity history fetched successfully", "account", ob.account, "window", window, "points", len(history.Points))
	return history, nil
}
