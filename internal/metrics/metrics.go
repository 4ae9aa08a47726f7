// Package metrics turns account state, equity history and reconstructed
// trades into the dashboard's P&L figures.
package metrics

import (
	"context"
	"time"
	_ "time/tzdata"

	"portfolio-api/internal/logger"
	"portfolio-api/internal/store"
	"portfolio-api/internal/trades"
	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input carries everything one computation needs. Orders must already be
// filtered to the baseline; Account is nil when it could not be read.
type Input struct {
	AssetClass    string
	Baseline      types.Baseline
	BaselineStart types.Timestamp
	Account       *types.AccountSummary
	History       map[types.HistoryWindow]types.EquityHistory
	Orders        []types.RawOrder
	Trades        trades.Result
}

// Windows are the lookup boundaries for one computation.
type Windows struct {
	// DayStart is midnight in the account's market zone before clamping.
	DayStart types.Timestamp
	Day      types.Timestamp
	Week     types.Timestamp
	Month    types.Timestamp
}

type Aggregator struct {
	now func() time.Time
	ny  *time.Location
}

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func New(opts ...Option) *Aggregator {
	a := &Aggregator{now: time.Now, ny: loadNewYork()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func loadNewYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		logger.Warn(context.Background(), "America/New_York unavailable, using fixed EST offset", "error", err)
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// Windows computes the day, week and month starts for now. Crypto trades
// around the clock so its day starts at UTC midnight; equities use New York.
// Every window is clamped to the baseline start.
func (a *Aggregator) Windows(assetClass string, baselineStart types.Timestamp) Windows {
	now := a.now()

	loc := a.ny
	if assetClass == store.AssetClassCrypto {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	dayStart := types.NewTimestamp(time.Date(y, m, d, 0, 0, 0, 0, loc))

	return Windows{
		DayStart: dayStart,
		Day:      clamp(dayStart, baselineStart),
		Week:     clamp(types.NewTimestamp(now.Add(-7*24*time.Hour)), baselineStart),
		Month:    clamp(types.NewTimestamp(now.Add(-30*24*time.Hour)), baselineStart),
	}
}

func clamp(t, floor types.Timestamp) types.Timestamp {
	if t.Before(floor) {
		return floor
	}
	return t
}

// Compute builds the metrics snapshot. Day, week and month P&L always come
// from history points; baseline equity only feeds TotalPnL.
func (a *Aggregator) Compute(in Input) types.Metrics {
	w := a.Windows(in.AssetClass, in.BaselineStart)

	var m types.Metrics
	for _, t := range in.Trades.Closed() {
		switch {
		case t.PnLPercent.IsPositive():
			m.Wins++
		case t.PnLPercent.IsNegative():
			m.Losses++
		}
	}
	m.TradesToday, m.LastTradeHoursAgo = a.activity(in.Orders, w.Day)

	if in.Account == nil || !in.Account.Equity.IsPositive() {
		return m
	}
	acct := in.Account
	equity := acct.Equity
	m.Equity = &equity

	total := equity.Sub(in.Baseline.Equity).Round(2)
	m.TotalPnL = &total
	if in.Trades.BuyOrders > 0 {
		avg := total.Div(decimal.NewFromInt(int64(in.Trades.BuyOrders))).Round(2)
		m.AvgReturnPct = &avg
	}

	points := func(window types.HistoryWindow) []types.EquityPoint {
		return NormalizeHistory(in.History[window], in.BaselineStart, &equity)
	}
	dayPoints := points(types.WindowDay)

	m.PnLDay = pnlSince(equity, dayPoints, w.Day)
	m.PnLWeek = pnlSince(equity, points(types.WindowWeek), w.Week)
	m.PnLMonth = pnlSince(equity, points(types.WindowMonth), w.Month)

	// last_equity is yesterday's close, which is meaningless if the account
	// was reset today.
	if !in.BaselineStart.After(w.DayStart) && acct.LastEquity.IsPositive() {
		m.DayChangePct = percentChange(equity, acct.LastEquity)
	} else if p, ok := EquityAtOrBefore(dayPoints, w.Day); ok && p.Equity.IsPositive() {
		m.DayChangePct = percentChange(equity, p.Equity)
	}

	if acct.PortfolioValue.IsPositive() {
		invested := acct.PortfolioValue.Sub(acct.Cash).Div(acct.PortfolioValue).Mul(hundred)
		invested = decimal.Min(decimal.Max(invested, decimal.Zero), hundred).Round(2)
		m.InvestedPct = &invested
	}
	return m
}

func pnlSince(equity decimal.Decimal, points []types.EquityPoint, start types.Timestamp) *decimal.Decimal {
	p, ok := EquityAtOrBefore(points, start)
	if !ok || !p.Equity.IsPositive() {
		return nil
	}
	v := equity.Sub(p.Equity).Round(2)
	return &v
}

func percentChange(now, then decimal.Decimal) *decimal.Decimal {
	v := now.Sub(then).Div(then).Mul(hundred).Round(2)
	return &v
}

func (a *Aggregator) activity(orders []types.RawOrder, dayStart types.Timestamp) (int, *decimal.Decimal) {
	today := 0
	var latest *types.Timestamp
	for _, o := range orders {
		t := o.EffectiveTime()
		if !t.Before(dayStart) {
			today++
		}
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	if latest == nil {
		return today, nil
	}
	hours := decimal.NewFromFloat(a.now().Sub(latest.Time).Hours()).Round(1)
	return today, &hours
}
