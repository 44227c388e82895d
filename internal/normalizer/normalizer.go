// Package normalizer turns loosely labelled per-symbol payloads into daily series.
//
// Field detection is by substring: the first label (in document order) containing
// "Close" supplies closing prices, and likewise for "Open", "High", "Low" and "Volume".
// Labels such as "Adj Close" therefore compete with "Close" and the earlier one wins.
// Data files produced by cmd/download and by pandas rely on this rule.
package normalizer

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// Field label substrings.
const (
	FieldClose  = "Close"
	FieldOpen   = "Open"
	FieldHigh   = "High"
	FieldLow    = "Low"
	FieldVolume = "Volume"
)

// NormalizeBytes parses data and normalizes the result.
func NormalizeBytes(data []byte) (types.Series, error) {
	payload, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return Normalize(payload)
}

// Normalize converts a payload into a Series sorted by date.
// It fails with ErrCodeNoCloseData when no label contains "Close".
// Records whose close is not a finite number are dropped, as are records
// whose timestamp key is not an integer.
func Normalize(payload *types.RawSeriesPayload) (types.Series, error) {
	closeValues, ok := findField(payload, FieldClose)
	if !ok {
		return nil, errors.New(errors.ErrCodeNoCloseData, "payload has no Close field")
	}

	openValues, _ := findField(payload, FieldOpen)
	highValues, _ := findField(payload, FieldHigh)
	lowValues, _ := findField(payload, FieldLow)
	volumeValues, _ := findField(payload, FieldVolume)

	series := make(types.Series, 0, closeValues.Len())

	for pair := closeValues.Oldest(); pair != nil; pair = pair.Next() {
		closePrice, ok := numeric(pair.Value)
		if !ok {
			continue
		}

		date, ok := timestampToDate(pair.Key)
		if !ok {
			continue
		}

		series = append(series, types.DailyRecord{
			Date:   date,
			Open:   lookup(openValues, pair.Key, closePrice),
			High:   lookup(highValues, pair.Key, closePrice),
			Low:    lookup(lowValues, pair.Key, closePrice),
			Close:  closePrice,
			Volume: lookup(volumeValues, pair.Key, 0),
		})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})

	return series, nil
}

// findField returns the values of the first label containing substr.
func findField(payload *types.RawSeriesPayload, substr string) (*types.FieldValues, bool) {
	for _, label := range payload.Labels() {
		if strings.Contains(label, substr) {
			return payload.Field(label)
		}
	}

	return nil, false
}

// lookup returns the numeric value stored at timestamp, or fallback when the
// field is missing, the timestamp is absent or the value is not a finite number.
func lookup(values *types.FieldValues, timestamp string, fallback float64) float64 {
	if values == nil {
		return fallback
	}

	raw, ok := values.Get(timestamp)
	if !ok {
		return fallback
	}

	v, ok := numeric(raw)
	if !ok {
		return fallback
	}

	return v
}

// numeric decodes a JSON number or numeric string.
func numeric(raw types.RawValue) (float64, bool) {
	var text string

	switch raw.Type {
	case jsonparser.Number:
		text = string(raw.Data)
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw.Data)
		if err != nil {
			return 0, false
		}

		text = strings.TrimSpace(s)
	default:
		return 0, false
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// timestampToDate truncates a millisecond epoch key to its UTC calendar day.
func timestampToDate(key string) (string, bool) {
	ms, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil {
		return "", false
	}

	return time.UnixMilli(ms).UTC().Format(types.DateLayout), true
}
