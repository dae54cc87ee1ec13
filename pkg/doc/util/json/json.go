/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when a value does not decode into a JSON object.
var ErrNotObject = errors.New("value is not a JSON object")

// ToMap converts an object, JSON string or JSON bytes into a JSON object represented by a map.
// Numbers are decoded as json.Number so that their textual form survives the round trip.
// The result never shares memory with v.
func ToMap(v interface{}) (map[string]interface{}, error) {
	var (
		b   []byte
		err error
	)

	switch cv := v.(type) {
	case []byte:
		b = cv
	case string:
		b = []byte(cv)
	case json.RawMessage:
		b = cv
	default:
		b, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal value: %w", err)
		}
	}

	var m map[string]interface{}

	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()

	if err = d.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}

	if m == nil {
		return nil, ErrNotObject
	}

	return m, nil
}

// ToMaps converts each element of values into a JSON object map.
func ToMaps(values []interface{}) ([]map[string]interface{}, error) {
	maps := make([]map[string]interface{}, len(values))

	for i := range values {
		m, err := ToMap(values[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		maps[i] = m
	}

	return maps, nil
}
