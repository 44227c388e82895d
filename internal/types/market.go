package types

import "time"

// DateLayout is the calendar-day format used for every record date.
const DateLayout = "2006-01-02"

// MarketData is a single bar as returned by a historical data provider.
type MarketData struct {
	Symbol string    `json:"symbol" yaml:"symbol"`
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// DailyRecord is one normalized trading day of a symbol.
// Close is always finite; Open, High and Low fall back to Close, Volume to 0.
type DailyRecord struct {
	// Date is the UTC calendar day in yyyy-mm-dd form.
	Date   string  `json:"date" yaml:"date"`
	Open   float64 `json:"open" yaml:"open"`
	High   float64 `json:"high" yaml:"high"`
	Low    float64 `json:"low" yaml:"low"`
	Close  float64 `json:"close" yaml:"close"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// Series is the ordered daily history of one symbol, non-decreasing by Date.
type Series []DailyRecord

// At returns the record at index i, or false when i is outside the series.
func (s Series) At(i int) (DailyRecord, bool) {
	if i < 0 || i >= len(s) {
		return DailyRecord{}, false
	}

	return s[i], true
}

// IsSorted reports whether every adjacent pair satisfies s[i].Date <= s[i+1].Date.
func (s Series) IsSorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i-1].Date > s[i].Date {
			return false
		}
	}

	return true
}

// DateEnvelope is the min and max date across a set of series.
type DateEnvelope struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Extend widens the envelope so it covers date.
func (e DateEnvelope) Extend(date string) DateEnvelope {
	if e.Start == "" || date < e.Start {
		e.Start = date
	}

	if e.End == "" || date > e.End {
		e.End = date
	}

	return e
}
