package metrics

import (
	"sort"

	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
)

var (
	one        = decimal.NewFromInt(1)
	onePercent = decimal.RequireFromString("0.01")
	half       = decimal.RequireFromString("0.5")
)

// deltaSampleSize bounds how many leading values the magnitude heuristic looks at.
const deltaSampleSize = 50

// NormalizeHistory returns absolute equity points at or after baselineStart,
// sorted by time. Some accounts report equity as a delta from base_value;
// that is detected either by base_value + last matching equityHint within
// max(1, 1%) or by every sampled value being under half of base_value.
func NormalizeHistory(h types.EquityHistory, baselineStart types.Timestamp, equityHint *decimal.Decimal) []types.EquityPoint {
	asDelta := isDelta(h, equityHint)

	out := make([]types.EquityPoint, 0, len(h.Points))
	for _, p := range h.Points {
		if p.Time.Before(baselineStart) {
			continue
		}
		if asDelta {
			p.Equity = h.BaseValue.Add(p.Equity)
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

func isDelta(h types.EquityHistory, equityHint *decimal.Decimal) bool {
	if h.BaseValue == nil || len(h.Points) == 0 {
		return false
	}
	base := *h.BaseValue

	if equityHint != nil && equityHint.IsPositive() {
		last := h.Points[len(h.Points)-1].Equity
		tolerance := decimal.Max(one, equityHint.Mul(onePercent))
		if base.Add(last).Sub(*equityHint).Abs().LessThanOrEqual(tolerance) {
			return true
		}
	}

	n := min(len(h.Points), deltaSampleSize)
	largest := decimal.Zero
	for _, p := range h.Points[:n] {
		largest = decimal.Max(largest, p.Equity.Abs())
	}
	return largest.LessThan(base.Mul(half))
}

// EquityAtOrBefore returns the last point at or before t. When every point is
// after t the first point is returned instead.
func EquityAtOrBefore(points []types.EquityPoint, t types.Timestamp) (types.EquityPoint, bool) {
	if len(points) == 0 {
		return types.EquityPoint{}, false
	}
	i := sort.Search(len(points), func(i int) bool { return points[i].Time.After(t) })
	if i == 0 {
		return points[0], true
	}
	return points[i-1], true
}

// EquityAtOrAfter returns the first point at or after t.
func EquityAtOrAfter(points []types.EquityPoint, t types.Timestamp) (types.EquityPoint, bool) {
	i := sort.Search(len(points), func(i int) bool { return !points[i].Time.Before(t) })
	if i == len(points) {
		return types.EquityPoint{}, false
	}
	return points[i], true
}

func Latest(points []types.EquityPoint) (types.EquityPoint, bool) {
	if len(points) == 0 {
		return types.EquityPoint{}, false
	}
	return points[len(points)-1], true
}
