package models

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the flat prediction record. A prediction list is encoded
// as repeated length-delimited records under listFieldPrediction.
const (
	fieldRouteID     protowire.Number = 1
	fieldRunID       protowire.Number = 2
	fieldMinutes     protowire.Number = 3
	fieldIsDeparting protowire.Number = 4

	listFieldPrediction protowire.Number = 1
)

// MarshalBinary encodes the prediction as a flat record of its four scalar
// fields so it can be handed across a goroutine or process boundary.
func (p Prediction) MarshalBinary() ([]byte, error) {
	return p.appendWire(nil), nil
}

func (p Prediction) appendWire(b []byte) []byte {
	b = protowire.AppendTag(b, fieldRouteID, protowire.BytesType)
	b = protowire.AppendString(b, p.RouteID)
	b = protowire.AppendTag(b, fieldRunID, protowire.BytesType)
	b = protowire.AppendString(b, p.RunID)
	b = protowire.AppendTag(b, fieldMinutes, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(p.Minutes)))
	b = protowire.AppendTag(b, fieldIsDeparting, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(p.IsDeparting))
	return b
}

// UnmarshalBinary decodes a record produced by MarshalBinary. Unknown fields
// are skipped.
func (p *Prediction) UnmarshalBinary(b []byte) error {
	var decoded Prediction
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("prediction tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldRouteID && typ == protowire.BytesType:
			decoded.RouteID, n = protowire.ConsumeString(b)
		case num == fieldRunID && typ == protowire.BytesType:
			decoded.RunID, n = protowire.ConsumeString(b)
		case num == fieldMinutes && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			decoded.Minutes = int(int64(v))
		case num == fieldIsDeparting && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			decoded.IsDeparting = protowire.DecodeBool(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("prediction field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}

	*p = decoded
	return nil
}

// EncodePredictions encodes a whole prediction list for delivery through the
// monitoring channel.
func EncodePredictions(predictions []Prediction) []byte {
	var b []byte
	for _, p := range predictions {
		b = protowire.AppendTag(b, listFieldPrediction, protowire.BytesType)
		b = protowire.AppendBytes(b, p.appendWire(nil))
	}
	return b
}

// DecodePredictions is the inverse of EncodePredictions. An empty input
// decodes to an empty, non-nil list.
func DecodePredictions(b []byte) ([]Prediction, error) {
	predictions := []Prediction{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("prediction list tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if num != listFieldPrediction || typ != protowire.BytesType {
			return nil, errors.New("prediction list: unexpected field")
		}

		record, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("prediction list record: %w", protowire.ParseError(n))
		}
		b = b[n:]

		var p Prediction
		if err := p.UnmarshalBinary(record); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}
