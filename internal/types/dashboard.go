package types

import "github.com/shopspring/decimal"

// TradeStats summarises the closed trades of one account.
type TradeStats struct {
	TotalTrades   int              `json:"totalTrades"`
	WinningTrades int              `json:"winningTrades"`
	LosingTrades  int              `json:"losingTrades"`
	WinRate       *decimal.Decimal `json:"winRate"`
	TotalPnL      decimal.Decimal  `json:"totalPnl"`
	AveragePnL    decimal.Decimal  `json:"averagePnl"`
	AverageWin    decimal.Decimal  `json:"averageWin"`
	AverageLoss   decimal.Decimal  `json:"averageLoss"`
}

// Metrics is the per-account dashboard snapshot. Nil fields mean the inputs
// needed to compute them were unavailable.
type Metrics struct {
	Equity            *decimal.Decimal `json:"equity"`
	TotalPnL          *decimal.Decimal `json:"totalPnl"`
	PnLDay            *decimal.Decimal `json:"pnlDay"`
	PnLWeek           *decimal.Decimal `json:"pnlWeek"`
	PnLMonth          *decimal.Decimal `json:"pnlMonth"`
	DayChangePct      *decimal.Decimal `json:"dayChangePct"`
	InvestedPct       *decimal.Decimal `json:"investedPct"`
	AvgReturnPct      *decimal.Decimal `json:"avgReturnPct"`
	Wins              int              `json:"wins"`
	Losses            int              `json:"losses"`
	TradesToday       int              `json:"tradesToday"`
	LastTradeHoursAgo *decimal.Decimal `json:"lastTradeHoursAgo"`
}

// Algorithm is one dashboard card: an account and its headline numbers.
type Algorithm struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Strategy       string          `json:"strategy"`
	Stats          TradeStats      `json:"stats"`
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
}

type LiveEquity struct {
	AccountID  int                        `json:"project"`
	Equity     decimal.Decimal            `json:"live_equity"`
	AsOf       Timestamp                  `json:"as_of"`
	AsOfMillis int64                      `json:"as_of_timestamp"`
	PricesUsed map[string]decimal.Decimal `json:"prices_used"`
}

type AccountHealth struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Paper      bool   `json:"paper"`
}

// PerformancePoint is one point of the equity chart. Returns is relative to
// the first point of the series.
type PerformancePoint struct {
	Date       Timestamp       `json:"date"`
	Returns    decimal.Decimal `json:"returns"`
	Equity     decimal.Decimal `json:"equity"`
	TimeMillis int64           `json:"timestamp"`
}

// Performance is the equity chart for one timeframe. AsOfMillis is set when
// the last point carries live equity.
type Performance struct {
	Timeframe  HistoryWindow      `json:"timeframe"`
	Data       []PerformancePoint `json:"data"`
	AsOfMillis *int64             `json:"as_of_timestamp"`
}
