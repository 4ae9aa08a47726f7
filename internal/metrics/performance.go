package metrics

import (
	"time"

	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
)

const (
	// liveMergeWindow is how close the live reading must be to the last
	// intraday point to replace it rather than extend the series.
	liveMergeWindow = 5 * time.Minute
	// tailOffset places the flat closing segment on long charts.
	tailOffset = time.Minute
)

// LiveValue is the freshest equity reading available for the chart's end.
type LiveValue struct {
	Equity decimal.Decimal
	At     types.Timestamp
}

// Performance builds the equity chart for window from normalized history
// points. The series starts at the first point at or after from, and returns
// are measured against that point.
//
// On daily charts the last bar is replaced by live (stamped now) and, for
// year-scale charts, followed by a flat tail point. On intraday charts live
// replaces the last point when within liveMergeWindow, else it is appended;
// with no history live becomes the only point.
func Performance(window types.HistoryWindow, points []types.EquityPoint, from types.Timestamp, live *LiveValue, now time.Time) types.Performance {
	out := types.Performance{Timeframe: window, Data: []types.PerformancePoint{}}

	var series []types.EquityPoint
	if first, ok := EquityAtOrAfter(points, from); ok {
		for _, p := range points {
			if !p.Time.Before(first.Time) {
				series = append(series, p)
			}
		}
	}

	if live != nil {
		series, out.AsOfMillis = mergeLive(window, series, *live, now)
	}
	if len(series) == 0 {
		return out
	}

	base := series[0].Equity
	for _, p := range series {
		out.Data = append(out.Data, types.PerformancePoint{
			Date:       p.Time,
			Returns:    p.Equity.Sub(base).Round(2),
			Equity:     p.Equity.Round(2),
			TimeMillis: p.Time.UnixMilli(),
		})
	}
	return out
}

func mergeLive(window types.HistoryWindow, series []types.EquityPoint, live LiveValue, now time.Time) ([]types.EquityPoint, *int64) {
	asOf := live.At.UnixMilli()

	if window.Daily() {
		last, ok := Latest(series)
		if !ok {
			return series, nil
		}
		stamp := types.NewTimestamp(now)
		if stamp.Before(last.Time) {
			stamp = last.Time
		}
		series[len(series)-1] = types.EquityPoint{Time: stamp, Equity: live.Equity}
		if window == types.WindowYear || window == types.WindowYTD || window == types.WindowAll {
			series = append(series, types.EquityPoint{Time: types.NewTimestamp(stamp.Add(tailOffset)), Equity: live.Equity})
		}
		return series, &asOf
	}

	point := types.EquityPoint{Time: live.At, Equity: live.Equity}
	last, ok := Latest(series)
	switch {
	case !ok:
		series = append(series, point)
	case absDuration(live.At.Sub(last.Time.Time)) <= liveMergeWindow:
		series[len(series)-1] = point
	case live.At.After(last.Time):
		series = append(series, point)
	default:
		// Live reading predates the history; keep the broker's series.
		return series, nil
	}
	return series, &asOf
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
