// Package portfolio answers dashboard queries per account by fetching broker
// data, reconstructing trades and aggregating metrics.
package portfolio

import (
	"context"
	"time"

	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/logger"
	"portfolio-api/internal/metrics"
	"portfolio-api/internal/store"
	"portfolio-api/internal/trades"
	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	cfg           *store.Config
	brokers       map[int]interfaces.Broker
	baselines     *store.Baselines
	reconstructor *trades.Reconstructor
	aggregator    *metrics.Aggregator
	now           func() time.Time
	timeout       time.Duration
	orderLimit    int
}

var _ interfaces.Portfolio = (*Service)(nil)

type Option func(*Service)

// WithClock fixes "now" for the reconstructor fallback and metric windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTimeout overrides the per-request broker timeout from config.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

func newService(cfg *store.Config, brokers map[int]interfaces.Broker, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		brokers:    brokers,
		baselines:  store.NewBaselines(cfg.Accounts),
		now:        time.Now,
		timeout:    cfg.Timeout(),
		orderLimit: cfg.Broker.OrderLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconstructor = trades.New(trades.WithClock(s.now))
	s.aggregator = metrics.New(metrics.WithClock(s.now))
	return s
}

func (s *Service) account(id int) store.AccountConfig {
	if acct, ok := s.cfg.Account(id); ok {
		return acct
	}
	return store.AccountConfig{ID: id, AssetClass: store.AssetClassEquity}
}

// reconstruct turns a snapshot into trades and logs the reconciliation. It
// also returns the baseline-filtered orders and the baseline start used.
func (s *Service) reconstruct(ctx context.Context, acct store.AccountConfig, snap snapshot) (trades.Result, []types.RawOrder, types.Timestamp) {
	op := logger.StartOperation(ctx, "portfolio.reconstruct", "account", acct.ID)
	ctx = op.GetContext()

	start := s.baselines.Start(ctx, acct.ID)
	res := s.reconstructor.Reconstruct(snap.orders, snap.positions, start)
	logger.Reconciliation(ctx, acct.ID, res.OpenCount(), res.ClosedCount(), res.BuyOrders,
		"orders", len(snap.orders),
		"positions", len(snap.positions),
		"baseline_start", start.String(),
	)
	op.End("trades", len(res.Trades), "buy_orders", res.BuyOrders)
	return res, trades.FilterOrders(snap.orders, start), start
}

func (s *Service) Trades(ctx context.Context, accountID int) trades.Result {
	acct := s.account(accountID)
	snap := s.fetch(ctx, acct, fetchPlan{trades: true})
	res, _, _ := s.reconstruct(ctx, acct, snap)
	return res
}

func (s *Service) Stats(ctx context.Context, accountID int) types.TradeStats {
	acct := s.account(accountID)
	snap := s.fetch(ctx, acct, fetchPlan{trades: true, account: true})
	res, _, _ := s.reconstruct(ctx, acct, snap)
	return metrics.ComputeStats(res, equityOf(snap.account), s.baselines.Get(acct.ID).Equity)
}

func (s *Service) Algorithm(ctx context.Context, accountID int) types.Algorithm {
	acct := s.account(accountID)
	snap := s.fetch(ctx, acct, fetchPlan{trades: true, account: true})
	res, _, _ := s.reconstruct(ctx, acct, snap)

	alg := types.Algorithm{
		ID:          acct.ID,
		Name:        acct.Name,
		Description: acct.Description,
		Strategy:    acct.Strategy,
		Stats:       metrics.ComputeStats(res, equityOf(snap.account), s.baselines.Get(acct.ID).Equity),
	}
	if eq := equityOf(snap.account); eq != nil {
		alg.PortfolioValue = *eq
	}
	return alg
}

// Algorithms returns every configured account in config order. Accounts are
// fetched concurrently.
func (s *Service) Algorithms(ctx context.Context) []types.Algorithm {
	out := make([]types.Algorithm, len(s.cfg.Accounts))
	var g errgroup.Group
	for i, acct := range s.cfg.Accounts {
		g.Go(func() error {
			out[i] = s.Algorithm(ctx, acct.ID)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) Metrics(ctx context.Context, accountID int) types.Metrics {
	acct := s.account(accountID)
	snap := s.fetch(ctx, acct, fetchPlan{trades: true, account: true, windows: metricWindows})
	res, filtered, start := s.reconstruct(ctx, acct, snap)

	return s.aggregator.Compute(metrics.Input{
		AssetClass:    acct.AssetClass,
		Baseline:      s.baselines.Get(acct.ID),
		BaselineStart: start,
		Account:       snap.account,
		History:       snap.history,
		Orders:        filtered,
		Trades:        res,
	})
}

// LiveEquity reports the account's current equity. The second result is
// false when the account could not be read.
func (s *Service) LiveEquity(ctx context.Context, accountID int) (types.LiveEquity, bool) {
	acct := s.account(accountID)
	snap := s.fetch(ctx, acct, fetchPlan{positions: true, account: true})
	eq := equityOf(snap.account)
	if eq == nil {
		return types.LiveEquity{}, false
	}

	asOf := types.NewTimestamp(s.now())
	prices := make(map[string]decimal.Decimal, len(snap.positions))
	for _, p := range snap.positions {
		prices[p.Symbol] = p.CurrentPrice
	}
	return types.LiveEquity{
		AccountID:  acct.ID,
		Equity:     *eq,
		AsOf:       asOf,
		AsOfMillis: asOf.UnixMilli(),
		PricesUsed: prices,
	}, true
}

// Performance returns the equity chart for one timeframe. Daily charts end on
// the latest intraday equity; intraday charts end on the account's equity.
func (s *Service) Performance(ctx context.Context, accountID int, window types.HistoryWindow) types.Performance {
	acct := s.account(accountID)
	plan := fetchPlan{account: true, windows: []types.HistoryWindow{window}}
	if window.Daily() {
		plan.windows = append(plan.windows, types.WindowDay)
	}
	snap := s.fetch(ctx, acct, plan)

	start := s.baselines.Start(ctx, acct.ID)
	eq := equityOf(snap.account)
	points := metrics.NormalizeHistory(snap.history[window], start, eq)

	from := start
	switch w := s.aggregator.Windows(acct.AssetClass, start); window {
	case types.WindowWeek:
		from = w.Week
	case types.WindowMonth:
		from = w.Month
	}

	var live *metrics.LiveValue
	if window.Daily() {
		day := metrics.NormalizeHistory(snap.history[types.WindowDay], start, eq)
		if p, ok := metrics.Latest(day); ok {
			live = &metrics.LiveValue{Equity: p.Equity, At: p.Time}
		}
	} else if eq != nil {
		live = &metrics.LiveValue{Equity: *eq, At: types.NewTimestamp(s.now())}
	}

	return metrics.Performance(window, points, from, live, s.now())
}

func (s *Service) Health(ctx context.Context) []types.AccountHealth {
	out := make([]types.AccountHealth, 0, len(s.cfg.Accounts))
	for _, acct := range s.cfg.Accounts {
		creds := acct.Credentials()
		out = append(out, types.AccountHealth{
			ID:         acct.ID,
			Name:       acct.Name,
			Configured: creds.Configured(),
			Paper:      creds.Paper(),
		})
	}
	return out
}

func equityOf(a *types.AccountSummary) *decimal.Decimal {
	if a == nil || !a.Equity.IsPositive() {
		return nil
	}
	eq := a.Equity
	return &eq
}
