package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is fixed width and always carries an explicit +00:00 offset,
// so string order and chronological order agree.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Timestamp is an instant normalized to UTC with microsecond precision.
type Timestamp struct {
	time.Time
}

// NewTimestamp normalizes t to UTC and truncates it to microseconds.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts RFC3339 (Z or numeric offset) and zone-less ISO-8601
// forms; zone-less values are read as UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewTimestamp(t), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return NewTimestamp(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("unparseable timestamp %q", s)
}

func (ts Timestamp) String() string {
	return ts.Time.UTC().Format(TimestampLayout)
}

func (ts Timestamp) Before(o Timestamp) bool { return ts.Time.Before(o.Time) }
func (ts Timestamp) After(o Timestamp) bool  { return ts.Time.After(o.Time) }

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
