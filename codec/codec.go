// Package codec saves tagged values as CBOR and loads them back.
//
// A value is written as a two-element array: the variant's ordinal and the
// variant's payload. Ordinals are part of the format, so reordering the
// variants of a union breaks data written before the change.
package codec

import (
	"errors"
	"fmt"

	"github.com/chazu/tagbox"
	"github.com/fxamacker/cbor/v2"
)

var (
	// ErrUnknownOrdinal is returned when the data names a variant the union
	// does not have.
	ErrUnknownOrdinal = errors.New("codec: unknown ordinal")

	// ErrEmpty is returned when marshaling an empty box.
	ErrEmpty = errors.New("codec: empty box")
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// envelope is the wire form of a tagged value.
type envelope struct {
	_       struct{} `cbor:",toarray"`
	Ordinal uint16
	Payload cbor.RawMessage
}

// Marshal encodes payload under ordinal.
func Marshal(ordinal tagbox.Discriminant, payload any) ([]byte, error) {
	raw, err := encMode.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal payload %T: %w", payload, err)
	}
	return encMode.Marshal(envelope{Ordinal: ordinal, Payload: raw})
}

// Unmarshal splits data into its ordinal and the still-encoded payload.
func Unmarshal(data []byte) (tagbox.Discriminant, cbor.RawMessage, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return 0, nil, fmt.Errorf("codec: unmarshal envelope: %w", err)
	}
	return env.Ordinal, env.Payload, nil
}

// DecodePayload decodes a payload returned by Unmarshal into v.
func DecodePayload(raw cbor.RawMessage, v any) error {
	if err := cbor.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("codec: unmarshal payload %T: %w", v, err)
	}
	return nil
}

// UnknownOrdinal returns an error wrapping ErrUnknownOrdinal.
func UnknownOrdinal(union string, ordinal tagbox.Discriminant) error {
	return fmt.Errorf("%w: %s has no variant %d", ErrUnknownOrdinal, union, ordinal)
}

// MarshalBox encodes the value held by b without consuming it.
func MarshalBox[T any](vs tagbox.Variants[T], b tagbox.Box[T]) ([]byte, error) {
	if b.IsZero() {
		return nil, ErrEmpty
	}
	var (
		data []byte
		err  error
	)
	vs.View(b, func(v T) {
		data, err = Marshal(b.Discriminant(), v)
	})
	return data, err
}

// A PayloadDecoder turns an ordinal and its encoded payload into a union
// value. Generated containers supply one per union.
type PayloadDecoder[T any] func(ordinal tagbox.Discriminant, raw cbor.RawMessage) (T, error)

// UnmarshalBox decodes data with decode and boxes the result.
func UnmarshalBox[T any](vs tagbox.Variants[T], data []byte, decode PayloadDecoder[T]) (tagbox.Box[T], error) {
	ordinal, raw, err := Unmarshal(data)
	if err != nil {
		return tagbox.Box[T]{}, err
	}
	if int(ordinal) >= vs.Len() {
		return tagbox.Box[T]{}, UnknownOrdinal(vs.Name(), ordinal)
	}
	v, err := decode(ordinal, raw)
	if err != nil {
		return tagbox.Box[T]{}, err
	}
	b := vs.Encode(v)
	if b.Discriminant() != ordinal {
		vs.Drop(vs.Decode(b))
		return tagbox.Box[T]{}, fmt.Errorf("codec: %s decoded ordinal %d as variant %d", vs.Name(), ordinal, b.Discriminant())
	}
	return b, nil
}
