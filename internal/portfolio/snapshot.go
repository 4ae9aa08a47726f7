package portfolio

import (
	"context"
	"sync"

	"portfolio-api/internal/broker"
	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/logger"
	"portfolio-api/internal/store"
	"portfolio-api/internal/types"

	"golang.org/x/sync/errgroup"
)

// snapshot is everything fetched from the broker for one request. Orders and
// positions are all-or-nothing: if either fails both are left empty.
type snapshot struct {
	orders    []types.RawOrder
	positions []types.Position
	account   *types.AccountSummary
	history   map[types.HistoryWindow]types.EquityHistory
}

type fetchPlan struct {
	trades    bool
	positions bool
	account   bool
	windows   []types.HistoryWindow
}

var metricWindows = []types.HistoryWindow{types.WindowDay, types.WindowWeek, types.WindowMonth}

// fetch runs the planned broker calls concurrently under the per-request
// timeout. Failures are logged and leave the corresponding fields empty.
func (s *Service) fetch(ctx context.Context, acct store.AccountConfig, plan fetchPlan) snapshot {
	op := logger.StartOperation(ctx, "portfolio.fetch", "account", acct.ID, "windows", len(plan.windows))
	ctx, cancel := context.WithTimeout(op.GetContext(), s.timeout)
	defer cancel()

	brk := s.broker(acct.ID)
	snap := snapshot{history: make(map[types.HistoryWindow]types.EquityHistory, len(plan.windows))}

	var (
		tradeGroup *errgroup.Group
		orders     []types.RawOrder
		positions  []types.Position
	)
	if plan.trades {
		var tctx context.Context
		tradeGroup, tctx = errgroup.WithContext(ctx)
		tradeGroup.Go(func() error {
			var err error
			orders, err = brk.ListOrders(tctx, types.OrderStatusAll, s.orderLimit)
			return err
		})
		tradeGroup.Go(func() error {
			var err error
			positions, err = brk.ListPositions(tctx)
			return err
		})
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	if plan.positions && !plan.trades {
		g.Go(func() error {
			positions, err := brk.ListPositions(ctx)
			if err != nil {
				s.degrade(ctx, acct.ID, "positions", err)
				return nil
			}
			snap.positions = positions
			return nil
		})
	}
	if plan.account {
		g.Go(func() error {
			summary, err := brk.AccountSummary(ctx)
			if err != nil {
				s.degrade(ctx, acct.ID, "account", err)
				return nil
			}
			snap.account = &summary
			return nil
		})
	}
	for _, w := range plan.windows {
		g.Go(func() error {
			h, err := brk.EquityHistory(ctx, w)
			if err != nil {
				s.degrade(ctx, acct.ID, "history_"+string(w), err)
				return nil
			}
			mu.Lock()
			snap.history[w] = h
			mu.Unlock()
			return nil
		})
	}

	var tradeErr error
	if tradeGroup != nil {
		if tradeErr = tradeGroup.Wait(); tradeErr == nil {
			snap.orders, snap.positions = orders, positions
		}
	}
	_ = g.Wait()

	if tradeErr != nil {
		// Orders and positions are dropped together; the request still renders.
		op.EndWithError(tradeErr, "call", "orders")
		return snap
	}
	op.End("orders", len(snap.orders), "positions", len(snap.positions), "history_windows", len(snap.history))
	return snap
}

func (s *Service) degrade(ctx context.Context, accountID int, call string, err error) {
	logger.Warn(ctx, "Broker call failed, degrading to empty result",
		"account", accountID,
		"call", call,
		"error", err,
	)
}

func (s *Service) broker(accountID int) interfaces.Broker {
	if b, ok := s.brokers[accountID]; ok {
		return b
	}
	return broker.Unavailable(accountID)
}
