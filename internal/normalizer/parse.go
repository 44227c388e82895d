package normalizer

import (
	"bytes"

	"github.com/buger/jsonparser"
	"github.com/rxtech-lab/stock-replay/internal/types"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// Parse decodes a per-symbol JSON document into a RawSeriesPayload.
// Labels and timestamps keep the order in which they appear in data.
// A label whose value is not an object is kept with no values.
func Parse(data []byte) (*types.RawSeriesPayload, error) {
	payload := types.NewRawSeriesPayload()

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		label, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}

		values := types.NewFieldValues()

		if dataType == jsonparser.Object {
			if err := parseValues(value, values); err != nil {
				return err
			}
		}

		payload.SetField(label, values)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePayloadParseFailed, "failed to decode series payload", err)
	}

	return payload, nil
}

func parseValues(data []byte, values *types.FieldValues) error {
	return jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		timestamp, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}

		values.Set(timestamp, types.RawValue{
			Data: bytes.Clone(value),
			Type: dataType,
		})

		return nil
	})
}
