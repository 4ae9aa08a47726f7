// Package trades rebuilds dashboard trades from raw broker orders: FIFO lot
// matching for flat symbols and one synthetic open trade per held position.
package trades

import (
	"slices"
	"sort"
	"time"

	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Result is the output of one reconstruction.
type Result struct {
	Trades []types.Trade `json:"trades"`
	// BuyOrders counts buy-side orders after baseline filtering, whether or
	// not they were matched.
	BuyOrders int `json:"buy_orders"`
}

func (r Result) OpenCount() int   { return r.count(types.TradeOpen) }
func (r Result) ClosedCount() int { return r.count(types.TradeClosed) }

func (r Result) count(status types.TradeStatus) int {
	n := 0
	for _, t := range r.Trades {
		if t.Status == status {
			n++
		}
	}
	return n
}

// Closed returns the closed trades in result order.
func (r Result) Closed() []types.Trade {
	out := make([]types.Trade, 0, len(r.Trades))
	for _, t := range r.Trades {
		if t.Status == types.TradeClosed {
			out = append(out, t)
		}
	}
	return out
}

// Reconstructor is stateless apart from the fallback entry time, which is
// fixed at construction so repeated calls agree.
type Reconstructor struct {
	now           func() time.Time
	fallbackEntry types.Timestamp
}

type Option func(*Reconstructor)

// WithClock overrides the clock used to derive the fallback entry time.
func WithClock(now func() time.Time) Option {
	return func(r *Reconstructor) {
		r.now = now
	}
}

func New(opts ...Option) *Reconstructor {
	r := &Reconstructor{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.fallbackEntry = previousMidnight(r.now())
	return r
}

// FallbackEntryTime is the entry time given to open positions with no orders.
func (r *Reconstructor) FallbackEntryTime() types.Timestamp {
	return r.fallbackEntry
}

func previousMidnight(now time.Time) types.Timestamp {
	y, m, d := now.UTC().AddDate(0, 0, -1).Date()
	return types.NewTimestamp(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Reconstruct converts orders and current positions into trades sorted newest
// first. Orders with no fill or an effective time before baselineStart are
// ignored entirely.
func (r *Reconstructor) Reconstruct(orders []types.RawOrder, positions []types.Position, baselineStart types.Timestamp) Result {
	filtered := FilterOrders(orders, baselineStart)
	symbols, bySymbol := groupBySymbol(filtered)

	held := make(map[string]types.Position, len(positions))
	heldSymbols := make([]string, 0, len(positions))
	for _, p := range positions {
		if _, ok := held[p.Symbol]; !ok {
			heldSymbols = append(heldSymbols, p.Symbol)
		}
		held[p.Symbol] = p
	}

	out := make([]types.Trade, 0, len(heldSymbols)+len(filtered))
	for _, sym := range heldSymbols {
		out = append(out, r.openTrade(held[sym], bySymbol[sym]))
	}
	for _, sym := range symbols {
		if _, ok := held[sym]; ok {
			continue
		}
		closed, _ := matchFIFO(sym, bySymbol[sym])
		out = append(out, closed...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortTime().After(out[j].SortTime())
	})

	return Result{Trades: out, BuyOrders: countBuys(filtered)}
}

// FilterOrders keeps orders with a positive fill at or after baselineStart.
func FilterOrders(orders []types.RawOrder, baselineStart types.Timestamp) []types.RawOrder {
	out := make([]types.RawOrder, 0, len(orders))
	for _, o := range orders {
		if !o.FilledQty.IsPositive() {
			continue
		}
		if o.EffectiveTime().Before(baselineStart) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// groupBySymbol keeps arrival order within a symbol and first-seen order
// across symbols.
func groupBySymbol(orders []types.RawOrder) ([]string, map[string][]types.RawOrder) {
	var symbols []string
	bySymbol := make(map[string][]types.RawOrder)
	for _, o := range orders {
		if _, ok := bySymbol[o.Symbol]; !ok {
			symbols = append(symbols, o.Symbol)
		}
		bySymbol[o.Symbol] = append(bySymbol[o.Symbol], o)
	}
	return symbols, bySymbol
}

func countBuys(orders []types.RawOrder) int {
	n := 0
	for _, o := range orders {
		if o.Side == types.SideBuy {
			n++
		}
	}
	return n
}

func (r *Reconstructor) openTrade(p types.Position, orders []types.RawOrder) types.Trade {
	entry := r.fallbackEntry
	if t, ok := latestOrderTime(orders, func(o types.RawOrder) bool { return o.Side == types.SideBuy }); ok {
		entry = t
	} else if t, ok := latestOrderTime(orders, func(types.RawOrder) bool { return true }); ok {
		// A held position implies an acquisition even if no order reads as a buy.
		entry = t
	}

	current := p.CurrentPrice
	return types.Trade{
		Symbol:       p.Symbol,
		Side:         types.SideBuy,
		EntryPrice:   p.AvgEntryPrice,
		Shares:       p.Qty,
		PnL:          p.UnrealizedPL,
		PnLPercent:   p.UnrealizedPLPC.Mul(hundred),
		EntryTime:    entry,
		Status:       types.TradeOpen,
		CurrentPrice: &current,
	}
}

func latestOrderTime(orders []types.RawOrder, keep func(types.RawOrder) bool) (types.Timestamp, bool) {
	var latest types.Timestamp
	found := false
	for _, o := range orders {
		if !keep(o) {
			continue
		}
		t := o.EffectiveTime()
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}

// matchFIFO closes sells against the oldest open buy lots. Sell quantity with
// no lot left to match is dropped; shorts are not modelled. The leftover
// queue is returned for inspection.
func matchFIFO(symbol string, orders []types.RawOrder) ([]types.Trade, *lotQueue) {
	sorted := slices.Clone(orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveTime().Before(sorted[j].EffectiveTime())
	})

	q := &lotQueue{}
	var out []types.Trade
	for _, o := range sorted {
		if o.Side == types.SideBuy {
			q.push(lot{qty: o.FilledQty, price: o.FilledAvgPrice, time: o.EffectiveTime()})
			continue
		}

		remaining := o.FilledQty
		exitTime := o.EffectiveTime()
		for remaining.IsPositive() && !q.empty() {
			front := q.front()
			matched := decimal.Min(remaining, front.qty)
			out = append(out, closedTrade(symbol, front, o.FilledAvgPrice, matched, exitTime))

			front.qty = front.qty.Sub(matched)
			if !front.qty.IsPositive() {
				q.pop()
			}
			remaining = remaining.Sub(matched)
		}
	}
	return out, q
}

func closedTrade(symbol string, l *lot, exitPrice, shares decimal.Decimal, exitTime types.Timestamp) types.Trade {
	diff := exitPrice.Sub(l.price)
	pct := decimal.Zero
	if !l.price.IsZero() {
		pct = diff.Div(l.price).Mul(hundred).Round(2)
	}
	exit := exitPrice
	exitAt := exitTime
	return types.Trade{
		Symbol:     symbol,
		Side:       types.SideSell,
		EntryPrice: l.price,
		ExitPrice:  &exit,
		Shares:     shares,
		PnL:        diff.Mul(shares).Round(2),
		PnLPercent: pct,
		EntryTime:  l.time,
		ExitTime:   &exitAt,
		Status:     types.TradeClosed,
	}
}
