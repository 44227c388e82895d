package writer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rxtech-lab/stock-replay/internal/types"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PayloadFields is the column order of a per-symbol payload, matching pandas'
// DataFrame.to_json output for a yfinance download.
var PayloadFields = []string{"Close", "High", "Low", "Open", "Volume"}

// FieldLabel returns the payload label of field for symbol, e.g. "('Close', 'AAPL')".
func FieldLabel(field, symbol string) string {
	return fmt.Sprintf("('%s', '%s')", field, symbol)
}

// JSONWriter buffers bars of a single symbol and writes them as one payload document.
type JSONWriter struct {
	outputPath string
	symbol     string
	bars       []types.MarketData
	finalized  bool
}

// NewJSONWriter creates a JSONWriter that writes the document of symbol to outputPath.
func NewJSONWriter(outputPath string, symbol string) MarketDataWriter {
	return &JSONWriter{
		outputPath: outputPath,
		symbol:     symbol,
	}
}

// Initialize implements MarketDataWriter.
func (w *JSONWriter) Initialize() error {
	w.bars = make([]types.MarketData, 0, 512)
	w.finalized = false

	return nil
}

// Write implements MarketDataWriter.
func (w *JSONWriter) Write(data types.MarketData) error {
	if w.bars == nil {
		return fmt.Errorf("writer not initialized")
	}

	if w.finalized {
		return fmt.Errorf("writer already finalized")
	}

	w.bars = append(w.bars, data)

	return nil
}

// Finalize implements MarketDataWriter.
func (w *JSONWriter) Finalize() (string, error) {
	if w.bars == nil {
		return "", fmt.Errorf("writer not initialized")
	}

	if w.finalized {
		return "", fmt.Errorf("writer already finalized")
	}

	content, err := EncodePayload(w.symbol, w.bars)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(w.outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(w.outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", w.outputPath, err)
	}

	w.finalized = true

	return w.outputPath, nil
}

// Close implements MarketDataWriter.
func (w *JSONWriter) Close() error {
	w.bars = nil

	return nil
}

// GetOutputPath implements MarketDataWriter.
func (w *JSONWriter) GetOutputPath() string {
	return w.outputPath
}

// EncodePayload renders bars as a per-symbol payload document keyed by
// millisecond timestamps in ascending time order. Non-finite values are omitted.
func EncodePayload(symbol string, bars []types.MarketData) ([]byte, error) {
	sorted := make([]types.MarketData, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	doc := orderedmap.New[string, *orderedmap.OrderedMap[string, float64]]()

	for _, field := range PayloadFields {
		values := orderedmap.New[string, float64]()

		for _, bar := range sorted {
			v := fieldValue(bar, field)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}

			values.Set(strconv.FormatInt(bar.Time.UnixMilli(), 10), v)
		}

		doc.Set(FieldLabel(field, symbol), values)
	}

	content, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %s: %w", symbol, err)
	}

	return content, nil
}

func fieldValue(bar types.MarketData, field string) float64 {
	switch field {
	case "Close":
		return bar.Close
	case "High":
		return bar.High
	case "Low":
		return bar.Low
	case "Open":
		return bar.Open
	default:
		return bar.Volume
	}
}
