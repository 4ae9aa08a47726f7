package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The dashboard reads money fields as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide maps a provider side literal onto Buy/Sell. Anything that is not a
// recognised buy spelling is treated as a sell.
func ParseSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "buy_order":
		return SideBuy
	default:
		return SideSell
	}
}

type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// RawOrder is a filled (or partially filled) order as reported by the broker.
type RawOrder struct {
	Symbol         string
	Side           Side
	FilledQty      decimal.Decimal
	FilledAvgPrice decimal.Decimal
	FilledAt       *Timestamp
	CreatedAt      Timestamp
}

// EffectiveTime is the fill time when known, else the creation time.
func (o RawOrder) EffectiveTime() Timestamp {
	if o.FilledAt != nil && !o.FilledAt.IsZero() {
		return *o.FilledAt
	}
	return o.CreatedAt
}

type Position struct {
	Symbol         string
	Qty            decimal.Decimal
	AvgEntryPrice  decimal.Decimal
	CurrentPrice   decimal.Decimal
	MarketValue    decimal.Decimal
	UnrealizedPL   decimal.Decimal
	UnrealizedPLPC decimal.Decimal // fraction, 0.05 == 5%
}

// Trade is a derived round trip (closed) or a currently held position (open).
type Trade struct {
	Symbol       string           `json:"symbol"`
	Side         Side             `json:"side"`
	EntryPrice   decimal.Decimal  `json:"entry_price"`
	ExitPrice    *decimal.Decimal `json:"exit_price"`
	Shares       decimal.Decimal  `json:"shares"`
	PnL          decimal.Decimal  `json:"pnl"`
	PnLPercent   decimal.Decimal  `json:"pnl_percent"`
	EntryTime    Timestamp        `json:"entry_time"`
	ExitTime     *Timestamp       `json:"exit_time"`
	Status       TradeStatus      `json:"status"`
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
}

// SortTime is the exit time for closed trades and the entry time otherwise.
func (t Trade) SortTime() Timestamp {
	if t.ExitTime != nil {
		return *t.ExitTime
	}
	return t.EntryTime
}

type Baseline struct {
	AccountID int             `json:"accountId"`
	StartISO  string          `json:"baselineStartIso"`
	Equity    decimal.Decimal `json:"baselineEquity"`
}

type AccountSummary struct {
	Equity         decimal.Decimal `json:"equity"`
	LastEquity     decimal.Decimal `json:"last_equity"`
	Cash           decimal.Decimal `json:"cash"`
	BuyingPower    decimal.Decimal `json:"buying_power"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
}

type EquityPoint struct {
	Time   Timestamp       `json:"t"`
	Equity decimal.Decimal `json:"equity"`
}

// EquityHistory is the raw portfolio history for one window. BaseValue is set
// when the provider reports one; Equity values may then be deltas from it.
type EquityHistory struct {
	Points    []EquityPoint
	BaseValue *decimal.Decimal
}

type HistoryWindow string

const (
	WindowDay     HistoryWindow = "day"
	WindowWeek    HistoryWindow = "week"
	WindowMonth   HistoryWindow = "month"
	WindowQuarter HistoryWindow = "3m"
	WindowYear    HistoryWindow = "year"
	WindowYTD     HistoryWindow = "ytd"
	WindowAll     HistoryWindow = "all"
)

// ParseHistoryWindow maps a chart timeframe onto a window. Unknown or empty
// values mean WindowAll.
func ParseHistoryWindow(s string) HistoryWindow {
	switch w := HistoryWindow(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowDay, WindowWeek, WindowMonth, WindowQuarter, WindowYear, WindowYTD:
		return w
	default:
		return WindowAll
	}
}

// Daily reports whether the window is charted from daily bars, where the
// last bar is stale until the session closes.
func (w HistoryWindow) Daily() bool {
	return w != WindowDay && w != WindowWeek
}

type OrderStatus string

const (
	OrderStatusAll    OrderStatus = "all"
	OrderStatusClosed OrderStatus = "closed"
	OrderStatusOpen   OrderStatus = "open"
)
