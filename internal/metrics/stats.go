package metrics

import (
	"portfolio-api/internal/trades"
	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
)

// ComputeStats derives trade statistics. TotalTrades is the buy-order count
// and break-even trades count as losses. currentEquity is nil when the
// account could not be read, in which case TotalPnL is zero.
func ComputeStats(res trades.Result, currentEquity *decimal.Decimal, baselineEquity decimal.Decimal) types.TradeStats {
	s := types.TradeStats{TotalTrades: res.BuyOrders}
	if currentEquity != nil {
		s.TotalPnL = currentEquity.Sub(baselineEquity).Round(2)
	}

	closed := res.Closed()
	if len(closed) == 0 {
		return s
	}

	var sum, wins, losses decimal.Decimal
	for _, t := range closed {
		sum = sum.Add(t.PnL)
		if t.PnL.IsPositive() {
			s.WinningTrades++
			wins = wins.Add(t.PnL)
		} else {
			s.LosingTrades++
			losses = losses.Add(t.PnL)
		}
	}

	n := decimal.NewFromInt(int64(len(closed)))
	rate := decimal.NewFromInt(int64(s.WinningTrades)).Div(n).Mul(hundred).Round(2)
	s.WinRate = &rate
	s.AveragePnL = sum.Div(n).Round(2)
	if s.WinningTrades > 0 {
		s.AverageWin = wins.Div(decimal.NewFromInt(int64(s.WinningTrades))).Round(2)
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = losses.Div(decimal.NewFromInt(int64(s.LosingTrades))).Round(2)
	}
	return s
}
