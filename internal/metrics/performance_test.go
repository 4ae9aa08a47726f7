package metrics

import (
	"testing"
	"time"

	"portfolio-api/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformanceStartsAtWindow(t *testing.T) {
	points := []types.EquityPoint{
		point("2025-06-01T00:00:00Z", "9000"),
		point("2025-06-05T00:00:00Z", "10000"),
		point("2025-06-09T00:00:00Z", "10125.555"),
	}

	perf := Performance(types.WindowWeek, points, ts("2025-06-03T18:00:00Z"), nil, now)
	require.Len(t, perf.Data, 2)
	assert.Nil(t, perf.AsOfMillis)
	assert.True(t, perf.Data[0].Returns.IsZero())
	assert.True(t, dec("10125.56").Equal(perf.Data[1].Equity))
	assert.True(t, dec("125.56").Equal(perf.Data[1].Returns))
	assert.Equal(t, ts("2025-06-09T00:00:00Z").UnixMilli(), perf.Data[1].TimeMillis)
	assert.Len(t, points, 3, "input is not modified")
}

func TestPerformanceIntradayLiveAppendsWhenStale(t *testing.T) {
	points := []types.EquityPoint{
		point("2025-06-10T13:00:00Z", "10000"),
		point("2025-06-10T17:30:00Z", "10050"),
	}
	live := &LiveValue{Equity: dec("10080"), At: types.NewTimestamp(now)}

	perf := Performance(types.WindowDay, points, ts("2024-01-01T00:00:00Z"), live, now)
	require.Len(t, perf.Data, 3)
	assert.True(t, dec("10050").Equal(perf.Data[1].Equity))
	assert.True(t, dec("80").Equal(perf.Data[2].Returns))
	require.NotNil(t, perf.AsOfMillis)
	assert.Equal(t, now.UnixMilli(), *perf.AsOfMillis)
}

func TestPerformanceIntradayIgnoresOlderLive(t *testing.T) {
	points := []types.EquityPoint{point("2025-06-10T17:30:00Z", "10050")}
	live := &LiveValue{Equity: dec("1"), At: ts("2025-06-10T12:00:00Z")}

	perf := Performance(types.WindowDay, points, ts("2024-01-01T00:00:00Z"), live, now)
	require.Len(t, perf.Data, 1)
	assert.True(t, dec("10050").Equal(perf.Data[0].Equity))
	assert.Nil(t, perf.AsOfMillis)
}

func TestPerformanceDailyNeedsHistory(t *testing.T) {
	live := &LiveValue{Equity: dec("10080"), At: types.NewTimestamp(now)}

	perf := Performance(types.WindowAll, nil, ts("2024-01-01T00:00:00Z"), live, now)
	assert.Empty(t, perf.Data)
	assert.Nil(t, perf.AsOfMillis)
}

func TestPerformanceDailyKeepsOrderWhenBarIsAhead(t *testing.T) {
	// A daily bar stamped after now (provider clock skew) keeps its time.
	bar := ts("2025-06-10T20:00:00Z")
	points := []types.EquityPoint{point("2025-06-09T00:00:00Z", "10000"), {Time: bar, Equity: dec("10010")}}
	live := &LiveValue{Equity: dec("10020"), At: ts("2025-06-10T17:59:00Z")}

	perf := Performance(types.WindowQuarter, points, ts("2024-01-01T00:00:00Z"), live, now)
	require.Len(t, perf.Data, 2)
	assert.Equal(t, bar.UnixMilli(), perf.Data[1].TimeMillis)
	assert.True(t, dec("20").Equal(perf.Data[1].Returns))
	assert.Equal(t, now.Add(-time.Minute).UnixMilli(), *perf.AsOfMillis)
}
