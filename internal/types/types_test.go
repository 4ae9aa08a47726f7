package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	cases := map[string]Side{
		"buy":        SideBuy,
		"BUY":        SideBuy,
		" Buy_Order": SideBuy,
		"sell":       SideSell,
		"sell_short": SideSell,
		"":           SideSell,
		"unknown":    SideSell,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseSide(in), "input %q", in)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-01T00:00:00Z", "2024-01-01T00:00:00.000000+00:00"},
		{"2024-06-03T13:30:00.123456789Z", "2024-06-03T13:30:00.123456+00:00"},
		{"2024-06-03T09:30:00-04:00", "2024-06-03T13:30:00.000000+00:00"},
		{"2024-06-03T09:30:00", "2024-06-03T09:30:00.000000+00:00"},
		{"2024-06-03 09:30:00.5", "2024-06-03T09:30:00.500000+00:00"},
		{"2024-06-03", "2024-06-03T00:00:00.000000+00:00"},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.String(), tc.in)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 6789, time.FixedZone("X", 3600)))

	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-02T02:04:05.000006+00:00"`, string(b))

	var back Timestamp
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(ts.Time))

	assert.Error(t, json.Unmarshal([]byte(`12`), &back))
}

func TestEffectiveTime(t *testing.T) {
	created := NewTimestamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	filled := NewTimestamp(time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC))

	o := RawOrder{CreatedAt: created}
	assert.Equal(t, created, o.EffectiveTime())

	o.FilledAt = &Timestamp{}
	assert.Equal(t, created, o.EffectiveTime())

	o.FilledAt = &filled
	assert.Equal(t, filled, o.EffectiveTime())
}

func TestTradeJSONShape(t *testing.T) {
	entry := NewTimestamp(time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC))
	current := decimal.RequireFromString("101.25")
	open := Trade{
		Symbol:       "AAPL",
		Side:         SideBuy,
		EntryPrice:   decimal.NewFromInt(100),
		Shares:       decimal.NewFromInt(2),
		PnL:          decimal.RequireFromString("2.5"),
		PnLPercent:   decimal.RequireFromString("1.25"),
		EntryTime:    entry,
		Status:       TradeOpen,
		CurrentPrice: &current,
	}

	b, err := json.Marshal(open)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, 101.25, m["current_price"])
	assert.Equal(t, 100.0, m["entry_price"])
	assert.Nil(t, m["exit_price"])
	assert.Nil(t, m["exit_time"])
	assert.Equal(t, "open", m["status"])
	assert.Equal(t, "2025-01-01T15:00:00.000000+00:00", m["entry_time"])

	open.CurrentPrice = nil
	b, err = json.Marshal(open)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "current_price")
}

func TestParseHistoryWindow(t *testing.T) {
	cases := map[string]HistoryWindow{
		"day":   WindowDay,
		"WEEK":  WindowWeek,
		" 3m ":  WindowQuarter,
		"ytd":   WindowYTD,
		"year":  WindowYear,
		"all":   WindowAll,
		"":      WindowAll,
		"5y":    WindowAll,
		"month": WindowMonth,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseHistoryWindow(in), "input %q", in)
	}

	assert.False(t, WindowDay.Daily())
	assert.False(t, WindowWeek.Daily())
	assert.True(t, WindowMonth.Daily())
	assert.True(t, WindowAll.Daily())
}
