// Package normalizer turns loosely shaped API observations into an ordered
// series of dated values.
package normalizer

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MeasureInGoods/internal/model"
)

var (
	timestampKeys = []string{"timestamp", "date", "time"}
	valueKeys     = []string{"value", "amount", "ratio"}
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01",
}

// Normalize converts raw entries into ascending observations. Each entry is
// either a [timestamp, value] pair or an object carrying one of the
// recognized timestamp and value aliases. Entries without a parseable date
// or a finite value are dropped, never defaulted. Normalize never fails.
func Normalize(raw []any) []model.Observation {
	out := make([]model.Observation, 0, len(raw))
	for _, entry := range raw {
		ts, v, ok := split(entry)
		if !ok {
			continue
		}
		obs, ok := observation(ts, v)
		if !ok {
			continue
		}
		out = append(out, obs)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func split(entry any) (ts, v any, ok bool) {
	switch e := entry.(type) {
	case []any:
		if len(e) < 2 {
			return nil, nil, false
		}
		return e[0], e[1], true
	case map[string]any:
		ts, ok = firstPresent(e, timestampKeys)
		if !ok {
			return nil, nil, false
		}
		v, ok = firstPresent(e, valueKeys)
		if !ok {
			return nil, nil, false
		}
		return ts, v, true
	default:
		return nil, nil, false
	}
}

func firstPresent(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func observation(ts, v any) (model.Observation, bool) {
	text, date, ok := parseTimestamp(ts)
	if !ok {
		return model.Observation{}, false
	}
	value, ok := parseValue(v)
	if !ok {
		return model.Observation{}, false
	}
	return model.Observation{Timestamp: text, Date: date, Value: value}, true
}

func parseTimestamp(ts any) (string, time.Time, bool) {
	switch t := ts.(type) {
	case string:
		text := strings.TrimSpace(t)
		if text == "" {
			return "", time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, text); err == nil {
				return text, d, true
			}
		}
		return "", time.Time{}, false
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return "", time.Time{}, false
		}
		return epoch(f)
	case float64:
		return epoch(t)
	default:
		return "", time.Time{}, false
	}
}

// Epoch bounds. Magnitudes from msThreshold up are milliseconds; anything
// past year 9999 either way is dropped.
const (
	msThreshold     = 1e11
	maxEpochSeconds = 253402300799
)

func epoch(v float64) (string, time.Time, bool) {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", time.Time{}, false
	}
	if math.Abs(v) >= msThreshold {
		v /= 1000
	}
	if math.Abs(v) > maxEpochSeconds {
		return "", time.Time{}, false
	}
	secs := math.Floor(v)
	d := time.Unix(int64(secs), int64((v-secs)*1e9)).UTC()
	return d.Format("2006-01-02"), d, true
}

func parseValue(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
