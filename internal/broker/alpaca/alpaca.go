// Package alpaca reads orders, positions, account state and portfolio
// history from the Alpaca trading REST API.
package alpaca

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio-api/internal/api"
	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/logger"
	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
)

// Alpaca caps a single orders page at 500.
const maxPageSize = 500

type Params struct {
	APIKey        string
	SecretKey     string
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
	// Clock drives the year-to-date history window. Defaults to time.Now.
	Clock func() time.Time
}

type Alpaca struct {
	client *api.Client
	now    func() time.Time
}

var _ interfaces.Broker = (*Alpaca)(nil)

func New(p Params) *Alpaca {
	opts := []api.ClientOption{
		api.WithBaseURL(strings.TrimRight(p.BaseURL, "/")),
		api.WithHeaders(api.AlpacaHeaders(p.APIKey, p.SecretKey)),
		api.WithRateLimit(p.RatePerMinute),
		api.WithLogging(true),
	}
	if p.Timeout > 0 {
		opts = append(opts, api.WithTimeout(p.Timeout))
	}
	now := p.Clock
	if now == nil {
		now = time.Now
	}
	return &Alpaca{client: api.NewClient(opts...), now: now}
}

// ListOrders returns up to limit orders, newest first. Filled legs of
// multi-leg orders are returned alongside their parent.
func (a *Alpaca) ListOrders(ctx context.Context, status types.OrderStatus, limit int) ([]types.RawOrder, error) {
	if limit <= 0 {
		limit = maxPageSize
	}

	var (
		out   []types.RawOrder
		until string
		seen  = make(map[string]bool)
	)
	for len(out) < limit {
		page := min(limit-len(out), maxPageSize)
		q := url.Values{
			"status":    {string(status)},
			"limit":     {strconv.Itoa(page)},
			"nested":    {"true"},
			"direction": {"desc"},
		}
		if until != "" {
			q.Set("until", until)
		}

		var raw []orderJSON
		if err := a.client.GetJSON(ctx, "/v2/orders", q, &raw); err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}

		added := 0
		for _, o := range raw {
			if seen[o.ID] {
				continue
			}
			seen[o.ID] = true
			added++
			out = append(out, o.flatten(ctx)...)
		}
		if len(raw) < page || added == 0 {
			break
		}
		until = raw[len(raw)-1].CreatedAt
	}
	return out, nil
}

func (a *Alpaca) ListPositions(ctx context.Context) ([]types.Position, error) {
	var raw []positionJSON
	if err := a.client.GetJSON(ctx, "/v2/positions", nil, &raw); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	out := make([]types.Position, 0, len(raw))
	for _, p := range raw {
		out = append(out, p.toPosition())
	}
	return out, nil
}

func (a *Alpaca) AccountSummary(ctx context.Context) (types.AccountSummary, error) {
	var raw accountJSON
	if err := a.client.GetJSON(ctx, "/v2/account", nil, &raw); err != nil {
		return types.AccountSummary{}, fmt.Errorf("get account: %w", err)
	}
	return types.AccountSummary{
		Equity:         decimalOrZero(raw.Equity),
		LastEquity:     decimalOrZero(raw.LastEquity),
		Cash:           decimalOrZero(raw.Cash),
		BuyingPower:    decimalOrZero(raw.BuyingPower),
		PortfolioValue: decimalOrZero(raw.PortfolioValue),
	}, nil
}

type historyQuery struct {
	period        string
	timeframe     string
	extendedHours bool
}

// historyQuery maps a dashboard window onto Alpaca's period and bar size.
// Intraday bars include extended hours; daily bars are unaffected by it.
func (a *Alpaca) historyQuery(window types.HistoryWindow) (historyQuery, bool) {
	switch window {
	case types.WindowDay:
		return historyQuery{"1D", "5Min", true}, true
	case types.WindowWeek:
		return historyQuery{"7D", "1H", true}, true
	case types.WindowMonth:
		return historyQuery{"30D", "1D", true}, true
	case types.WindowQuarter:
		return historyQuery{"3M", "1D", false}, true
	case types.WindowYear, types.WindowAll:
		return historyQuery{"1A", "1D", false}, true
	case types.WindowYTD:
		now := a.now().UTC()
		days := int(now.Sub(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)).Hours() / 24)
		if days <= 29 {
			return historyQuery{strconv.Itoa(max(days, 1)) + "D", "1H", true}, true
		}
		return historyQuery{"1A", "1D", false}, true
	}
	return historyQuery{}, false
}

func (a *Alpaca) EquityHistory(ctx context.Context, window types.HistoryWindow) (types.EquityHistory, error) {
	hq, ok := a.historyQuery(window)
	if !ok {
		return types.EquityHistory{}, fmt.Errorf("unknown history window %q", window)
	}
	q := url.Values{
		"period":         {hq.period},
		"timeframe":      {hq.timeframe},
		"extended_hours": {strconv.FormatBool(hq.extendedHours)},
	}

	var raw historyJSON
	if err := a.client.GetJSON(ctx, "/v2/account/portfolio/history", q, &raw); err != nil {
		return types.EquityHistory{}, fmt.Errorf("portfolio history %s: %w", window, err)
	}
	return raw.toHistory(), nil
}

// The Alpaca API encodes decimals as strings and may send null for values
// that are not yet known.

type orderJSON struct {
	ID             string      `json:"id"`
	Symbol         string      `json:"symbol"`
	Side           string      `json:"side"`
	FilledQty      *string     `json:"filled_qty"`
	FilledAvgPrice *string     `json:"filled_avg_price"`
	FilledAt       *string     `json:"filled_at"`
	CreatedAt      string      `json:"created_at"`
	Legs           []orderJSON `json:"legs"`
}

func (o orderJSON) flatten(ctx context.Context) []types.RawOrder {
	out := []types.RawOrder{o.toRawOrder(ctx)}
	for _, leg := range o.Legs {
		if leg.ID == "" || leg.FilledQty == nil {
			continue
		}
		out = append(out, leg.flatten(ctx)...)
	}
	return out
}

func (o orderJSON) toRawOrder(ctx context.Context) types.RawOrder {
	created, err := types.ParseTimestamp(o.CreatedAt)
	if err != nil {
		logger.Warn(ctx, "Unparseable order created_at", "order_id", o.ID, "value", o.CreatedAt, "error", err)
	}

	var filledAt *types.Timestamp
	if o.FilledAt != nil && *o.FilledAt != "" {
		if ts, err := types.ParseTimestamp(*o.FilledAt); err == nil {
			filledAt = &ts
		} else {
			logger.Warn(ctx, "Unparseable order filled_at", "order_id", o.ID, "value", *o.FilledAt, "error", err)
		}
	}

	return types.RawOrder{
		Symbol:         o.Symbol,
		Side:           types.ParseSide(o.Side),
		FilledQty:      decimalPtrOrZero(o.FilledQty),
		FilledAvgPrice: decimalPtrOrZero(o.FilledAvgPrice),
		FilledAt:       filledAt,
		CreatedAt:      created,
	}
}

type positionJSON struct {
	Symbol         string `json:"symbol"`
	Qty            string `json:"qty"`
	AvgEntryPrice  string `json:"avg_entry_price"`
	CurrentPrice   string `json:"current_price"`
	MarketValue    string `json:"market_value"`
	UnrealizedPL   string `json:"unrealized_pl"`
	UnrealizedPLPC string `json:"unrealized_plpc"`
}

func (p positionJSON) toPosition() types.Position {
	return types.Position{
		Symbol:         p.Symbol,
		Qty:            decimalOrZero(p.Qty),
		AvgEntryPrice:  decimalOrZero(p.AvgEntryPrice),
		CurrentPrice:   decimalOrZero(p.CurrentPrice),
		MarketValue:    decimalOrZero(p.MarketValue),
		UnrealizedPL:   decimalOrZero(p.UnrealizedPL),
		UnrealizedPLPC: decimalOrZero(p.UnrealizedPLPC),
	}
}

type accountJSON struct {
	Equity         string `json:"equity"`
	LastEquity     string `json:"last_equity"`
	Cash           string `json:"cash"`
	BuyingPower    string `json:"buying_power"`
	PortfolioValue string `json:"portfolio_value"`
}

type historyJSON struct {
	Timestamp []int64            `json:"timestamp"`
	Equity    []*decimal.Decimal `json:"equity"`
	BaseValue *decimal.Decimal   `json:"base_value"`
}

// toHistory pairs timestamps (unix seconds) with equity values, skipping
// nulls. Mismatched arrays yield an empty history.
func (h historyJSON) toHistory() types.EquityHistory {
	out := types.EquityHistory{BaseValue: h.BaseValue}
	if len(h.Timestamp) != len(h.Equity) {
		return out
	}
	out.Points = make([]types.EquityPoint, 0, len(h.Timestamp))
	for i, ts := range h.Timestamp {
		if h.Equity[i] == nil {
			continue
		}
		sec := ts
		// Some accounts report milliseconds.
		if sec > 1e10 {
			sec /= 1000
		}
		out.Points = append(out.Points, types.EquityPoint{
			Time:   types.NewTimestamp(time.Unix(sec, 0)),
			Equity: *h.Equity[i],
		})
	}
	return out
}

func decimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalPtrOrZero(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return decimalOrZero(*s)
}
