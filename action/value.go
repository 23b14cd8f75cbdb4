package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Value is one node of a JSON document. Concrete types are Object,
// Array, string, bool, int64, uint64, float64 and nil. Unlike
// map[string]any, an Object remembers the key order of the source
// document, which is what makes hashing a generic action body
// deterministic.
type Value any

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object with its members in document order.
type Object []Member

// Array is a JSON array.
type Array []Value

// Get returns the value of the first member with the given key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// ParseValue decodes a complete JSON document into a Value, preserving
// object key order and the integer/float distinction of each number.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	// Reject trailing tokens so a concatenation of documents cannot
	// silently hash as its first document only.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}

	return v, nil
}

// ParseObject is ParseValue restricted to a top-level JSON object.
func ParseObject(data []byte) (Object, error) {
	v, err := ParseValue(data)
	if err != nil {
		return nil, err
	}

	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}

	return obj, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid object key %v", keyTok)
				}

				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, Member{Key: key, Value: val})
			}
			// Consume the closing brace
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil

		case '[':
			arr := Array{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)

	case string:
		return t, nil
	case bool:
		return t, nil
	case nil:
		return nil, nil
	case json.Number:
		return decodeNumber(t)
	}

	return nil, fmt.Errorf("unsupported JSON token %v", tok)
}

// decodeNumber keeps the source's integer/float distinction: a literal
// without '.', 'e' or 'E' becomes int64 (or uint64 above int64 range),
// everything else float64.
func decodeNumber(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, nil
		}
	}

	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}

var (
	_ msgpack.CustomEncoder = (Object)(nil)
	_ msgpack.CustomEncoder = (Array)(nil)
)

// EncodeMsgpack encodes the object as a MessagePack map with the keys
// in document order.
func (o Object) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(o)); err != nil {
		return err
	}
	for _, m := range o {
		if err := enc.EncodeString(m.Key); err != nil {
			return err
		}
		if err := encodeValue(enc, m.Value); err != nil {
			return fmt.Errorf("field %q: %w", m.Key, err)
		}
	}
	return nil
}

func (a Array) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(len(a)); err != nil {
		return err
	}
	for i, v := range a {
		if err := encodeValue(enc, v); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}

func encodeValue(enc *msgpack.Encoder, v Value) error {
	switch t := v.(type) {
	case nil:
		return enc.EncodeNil()
	case Object:
		return t.EncodeMsgpack(enc)
	case Array:
		return t.EncodeMsgpack(enc)
	case string:
		return enc.EncodeString(t)
	case bool:
		return enc.EncodeBool(t)
	case int64:
		return enc.EncodeInt(t)
	case uint64:
		return enc.EncodeUint(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("non-finite number %v", t)
		}
		return enc.EncodeFloat64(t)
	}
	return fmt.Errorf("unsupported value type %T", v)
}
