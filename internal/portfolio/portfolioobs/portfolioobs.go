package portfolioobs

import (
	"context"
	"time"

	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/logger"
	"portfolio-api/internal/trace"
	"portfolio-api/internal/trades"
	"portfolio-api/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

type observablePortfolio struct {
	portfolio interfaces.Portfolio
}

var _ interfaces.Portfolio = (*observablePortfolio)(nil)

func Wrap(p interfaces.Portfolio) interfaces.Portfolio {
	return &observablePortfolio{
		portfolio: p,
	}
}

func (op *observablePortfolio) Algorithms(ctx context.Context) []types.Algorithm {
	ctx, span := trace.StartSpan(ctx, "portfolio.Algorithms")
	defer span.End()

	start := time.Now()
	algs := op.portfolio.Algorithms(ctx)

	logger.InfoSkip(ctx, 1, "Algorithms listed",
		"count", len(algs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return algs
}

func (op *observablePortfolio) Algorithm(ctx context.Context, accountID int) types.Algorithm {
	ctx, span := trace.StartSpan(ctx, "portfolio.Algorithm")
	defer span.End()
	span.SetAttributes(attribute.Int("account", accountID))

	start := time.Now()
	alg := op.portfolio.Algorithm(ctx, accountID)

	logger.InfoSkip(ctx, 1, "Algorithm loaded",
		"account", accountID,
		"total_trades", alg.Stats.TotalTrades,
		"total_pnl", alg.Stats.TotalPnL.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return alg
}

func (op *observablePortfolio) Trades(ctx context.Context, accountID int) trades.Result {
	ctx, span := trace.StartSpan(ctx, "portfolio.Trades")
	defer span.End()
	span.SetAttributes(attribute.Int("account", accountID))

	start := time.Now()
	res := op.portfolio.Trades(ctx, accountID)

	span.SetAttributes(attribute.Int("trades", len(res.Trades)))
	logger.InfoSkip(ctx, 1, "Trades reconstructed",
		"account", accountID,
		"trades", len(res.Trades),
		"buy_orders", res.BuyOrders,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (op *observablePortfolio) Stats(ctx context.Context, accountID int) types.TradeStats {
	ctx, span := trace.StartSpan(ctx, "portfolio.Stats")
	defer span.End()
	span.SetAttributes(attribute.Int("account", accountID))

	start := time.Now()
	stats := op.portfolio.Stats(ctx, accountID)

	logger.InfoSkip(ctx, 1, "Stats computed",
		"account", accountID,
		"total_trades", stats.TotalTrades,
		"winning", stats.WinningTrades,
		"losing", stats.LosingTrades,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return stats
}

func (op *observablePortfolio) Metrics(ctx context.Context, accountID int) types.Metrics {
	ctx, span := trace.StartSpan(ctx, "portfolio.Metrics")
	defer span.End()
	span.SetAttributes(attribute.Int("account", accountID))

	start := time.Now()
	m := op.portfolio.Metrics(ctx, accountID)

	if m.Equity == nil {
		logger.WarnSkip(ctx, 1, "Metrics computed without account equity",
			"account", accountID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return m
	}
	logger.InfoSkip(ctx, 1, "Metrics computed",
		"account", accountID,
		"equity", m.Equity.String(),
		"trades_today", m.TradesToday,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return m
}

func (op *observablePortfolio) LiveEquity(ctx context.Context, accountID int) (types.LiveEquity, bool) {
	ctx, span := trace.StartSpan(ctx, "portfolio.LiveEquity")
	defer span.End()
	span.SetAttributes(attribute.Int("account", accountID))

	eq, ok := op.portfolio.LiveEquity(ctx, accountID)
	if !ok {
		logger.WarnSkip(ctx, 1, "Live equity unavailable", "account", accountID)
		return eq, false
	}

	logger.DebugSkip(ctx, 1, "Live equity fetched", "account", accountID, "equity", eq.Equity.String())
	return eq, true
}

func (op *observablePortfolio) Performance(ctx context.Context, accountID int, window types.HistoryWindow) types.Performance {
	ctx, span := trace.StartSpan(ctx, "portfolio.Performance")
	defer span.End()
	span.SetAttributes(
		attribute.Int("account", accountID),
		attribute.String("timeframe", string(window)),
	)

	start := time.Now()
	perf := op.portfolio.Performance(ctx, accountID, window)

	if len(perf.Data) == 0 {
		logger.WarnSkip(ctx, 1, "Performance chart empty", "account", accountID, "timeframe", string(window))
		return perf
	}
	logger.DebugSkip(ctx, 1, "Performance chart built",
		"account", accountID,
		"timeframe", string(window),
		"points", len(perf.Data),
		"live", perf.AsOfMillis != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return perf
}

func (op *observablePortfolio) Health(ctx context.Context) []types.AccountHealth {
	return op.portfolio.Health(ctx)
}
