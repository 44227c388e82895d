package types

import (
	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RawValue is an undecoded field value of a per-symbol payload.
type RawValue struct {
	Data []byte
	Type jsonparser.ValueType
}

// FieldValues maps a millisecond timestamp key to its raw value, in document order.
type FieldValues = orderedmap.OrderedMap[string, RawValue]

// RawSeriesPayload is a per-symbol document: field labels such as "('Close', 'AAPL')"
// mapped to timestamp-keyed values. Label order is the order of the source document.
type RawSeriesPayload struct {
	fields *orderedmap.OrderedMap[string, *FieldValues]
}

// NewRawSeriesPayload returns an empty payload.
func NewRawSeriesPayload() *RawSeriesPayload {
	return &RawSeriesPayload{
		fields: orderedmap.New[string, *FieldValues](),
	}
}

// SetField stores values under label. A repeated label replaces the earlier values
// but keeps its original position.
func (p *RawSeriesPayload) SetField(label string, values *FieldValues) {
	p.fields.Set(label, values)
}

// Field returns the values stored under label.
func (p *RawSeriesPayload) Field(label string) (*FieldValues, bool) {
	return p.fields.Get(label)
}

// Labels returns the field labels in document order.
func (p *RawSeriesPayload) Labels() []string {
	labels := make([]string, 0, p.fields.Len())
	for pair := p.fields.Oldest(); pair != nil; pair = pair.Next() {
		labels = append(labels, pair.Key)
	}

	return labels
}

// Len returns the number of field labels.
func (p *RawSeriesPayload) Len() int {
	return p.fields.Len()
}

// NewFieldValues returns an empty, order-preserving timestamp map.
func NewFieldValues() *FieldValues {
	return orderedmap.New[string, RawValue]()
}
