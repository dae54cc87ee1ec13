/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package flatten walks JSON-like values and reports every leaf together with its path.
//
// Paths use dotted keys for objects and bracketed indexes for arrays, e.g.
//
//	credentialSubject.degrees[1].name
//
// Scalars (string, number, boolean and null) are leaves. Empty objects and arrays are
// skipped unless WithEmptyContainers is given, in which case they are reported as leaves too.
package flatten

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrUnsupportedValue is returned when a value outside the JSON data model is met.
var ErrUnsupportedValue = errors.New("unsupported value")

// UnsupportedValueError names the path of a value outside the JSON data model.
type UnsupportedValueError struct {
	Path  string
	Value interface{}
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("%s at path '%s': %T", ErrUnsupportedValue, e.Path, e.Value)
}

// Is matches ErrUnsupportedValue.
func (e *UnsupportedValueError) Is(target error) bool {
	return target == ErrUnsupportedValue
}

// Visitor is called for every leaf. Returning an error stops the walk.
type Visitor func(path string, value interface{}) error

type walkOpts struct {
	emptyContainers bool
}

// Opt configures Walk and Paths.
type Opt func(opts *walkOpts)

// WithEmptyContainers reports empty objects and arrays as leaves instead of skipping them.
func WithEmptyContainers(flag bool) Opt {
	return func(opts *walkOpts) {
		opts.emptyContainers = flag
	}
}

// Walk visits every leaf of value in deterministic order. Object keys are visited sorted.
// prefix is prepended to every reported path.
func Walk(value interface{}, prefix string, visit Visitor, opts ...Opt) error {
	o := &walkOpts{}

	for _, opt := range opts {
		opt(o)
	}

	return walk(value, prefix, visit, o)
}

// Paths returns the paths of all leaves of value.
func Paths(value interface{}, prefix string, opts ...Opt) ([]string, error) {
	var paths []string

	err := Walk(value, prefix, func(path string, _ interface{}) error {
		paths = append(paths, path)

		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func walk(value interface{}, path string, visit Visitor, o *walkOpts) error {
	switch v := value.(type) {
	case map[string]interface{}:
		if len(v) == 0 {
			if o.emptyContainers {
				return visit(path, v)
			}

			return nil
		}

		keys := maps.Keys(v)
		slices.Sort(keys)

		for _, k := range keys {
			if err := walk(v[k], JoinKey(path, k), visit, o); err != nil {
				return err
			}
		}

		return nil
	case []interface{}:
		if len(v) == 0 {
			if o.emptyContainers {
				return visit(path, v)
			}

			return nil
		}

		for i, e := range v {
			if err := walk(e, JoinIndex(path, i), visit, o); err != nil {
				return err
			}
		}

		return nil
	default:
		if !IsScalar(value) {
			return &UnsupportedValueError{Path: path, Value: value}
		}

		return visit(path, value)
	}
}

// IsScalar reports whether v is a JSON scalar: nil, bool, string or a finite number.
func IsScalar(v interface{}) bool {
	switch n := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
	default:
		return false
	}
}

// JoinKey appends an object key to path.
func JoinKey(path, key string) string {
	if path == "" {
		return key
	}

	return path + "." + key
}

// JoinIndex appends an array index to path.
func JoinIndex(path string, index int) string {
	return path + "[" + strconv.Itoa(index) + "]"
}
