/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package digest computes leaf commitments and the target hash of a document.
//
// A leaf commitment is the Keccak-256 hash of the canonical JSON object
//
//	{"<path>": "<salt>:<value>"}          (Untyped scheme)
//	{"<path>": "<salt>:<type>:<value>"}   (Typed scheme)
//
// The target hash is the Keccak-256 hash of the canonical JSON array holding the sorted union
// of the visible leaf commitments and the obfuscated hashes.
package digest

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gowebpki/jcs"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/flatten"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/salt"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/cryptoutil"
)

// Scheme selects the leaf preimage layout.
type Scheme int

const (
	// Untyped leaf preimages carry only salt and value. Kept for documents issued in older shapes.
	Untyped Scheme = iota
	// Typed leaf preimages also carry the JSON type of the value, so 3 and "3" never collide.
	Typed
)

// ErrSaltNotFound is returned when a visible leaf has no salt, which means the document was tampered with.
var ErrSaltNotFound = errors.New("salt not found")

// SaltNotFoundError names the leaf path without a salt.
type SaltNotFoundError struct {
	Path string
}

func (e *SaltNotFoundError) Error() string {
	return fmt.Sprintf("%s for path '%s'", ErrSaltNotFound, e.Path)
}

// Is matches ErrSaltNotFound.
func (e *SaltNotFoundError) Is(target error) bool {
	return target == ErrSaltNotFound
}

// TypeOf returns the JSON type name of v: string, number, boolean, null, object or array.
func TypeOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	default:
		return "number"
	}
}

// HashLeaf returns the hex encoded commitment of one leaf.
func HashLeaf(scheme Scheme, path, saltValue string, value interface{}) (string, error) {
	text, err := valueText(path, value)
	if err != nil {
		return "", err
	}

	preimage := saltValue + ":" + text
	if scheme == Typed {
		preimage = saltValue + ":" + TypeOf(value) + ":" + text
	}

	canonical, err := canonicalJSON(map[string]string{path: preimage})
	if err != nil {
		return "", err
	}

	return cryptoutil.Keccak256Hex(canonical), nil
}

type computeOpts struct {
	scheme          Scheme
	emptyContainers bool
}

// Opt configures Compute.
type Opt func(opts *computeOpts)

// WithScheme sets the leaf preimage scheme (default Untyped).
func WithScheme(scheme Scheme) Opt {
	return func(opts *computeOpts) {
		opts.scheme = scheme
	}
}

// WithEmptyContainers treats empty objects and arrays as leaves.
func WithEmptyContainers(flag bool) Opt {
	return func(opts *computeOpts) {
		opts.emptyContainers = flag
	}
}

// Leaves returns the commitments of every visible leaf of doc, in flattening order.
// doc must not contain the proof envelope.
func Leaves(doc map[string]interface{}, salts []salt.Salt, opts ...Opt) ([]string, error) {
	o := &computeOpts{}

	for _, opt := range opts {
		opt(o)
	}

	hashes := []string{}

	// an empty document contributes no leaves, even when empty containers count as leaves
	if len(doc) == 0 {
		return hashes, nil
	}

	saltByPath := salt.ToMap(salts)

	err := flatten.Walk(doc, "", func(path string, value interface{}) error {
		s, ok := saltByPath[path]
		if !ok {
			return &SaltNotFoundError{Path: path}
		}

		h, err := HashLeaf(o.scheme, path, s, value)
		if err != nil {
			return err
		}

		hashes = append(hashes, h)

		return nil
	}, flatten.WithEmptyContainers(o.emptyContainers))
	if err != nil {
		return nil, err
	}

	return hashes, nil
}

// Compute returns the hex encoded target hash of doc.
// doc must not contain the proof envelope.
func Compute(doc map[string]interface{}, salts []salt.Salt, obfuscated []string, opts ...Opt) (string, error) {
	leaves, err := Leaves(doc, salts, opts...)
	if err != nil {
		return "", err
	}

	return Combine(leaves, obfuscated)
}

// Combine hashes the sorted union of visible leaf hashes and obfuscated hashes.
func Combine(visible, obfuscated []string) (string, error) {
	all := make([]string, 0, len(visible)+len(obfuscated))
	all = append(all, visible...)
	all = append(all, obfuscated...)

	sort.Strings(all)

	canonical, err := canonicalJSON(all)
	if err != nil {
		return "", err
	}

	return cryptoutil.Keccak256Hex(canonical), nil
}

func canonicalJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal preimage: %w", err)
	}

	canonical, err := jcs.Transform(b)
	if err != nil {
		return nil, fmt.Errorf("canonicalize preimage: %w", err)
	}

	return canonical, nil
}

// valueText renders a leaf value the way it appears in the preimage.
// Numbers follow ECMAScript formatting so 3, 3.0 and json.Number("3.00") render identically.
func valueText(path string, value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(v), nil
	case string:
		return v, nil
	case map[string]interface{}:
		if len(v) != 0 {
			return "", &flatten.UnsupportedValueError{Path: path, Value: value}
		}

		return "{}", nil
	case []interface{}:
		if len(v) != 0 {
			return "", &flatten.UnsupportedValueError{Path: path, Value: value}
		}

		return "[]", nil
	}

	literal, ok := numberLiteral(value)
	if !ok {
		return "", &flatten.UnsupportedValueError{Path: path, Value: value}
	}

	// JCS serialises numbers with the ECMAScript algorithm; it only accepts arrays or objects at the root.
	canonical, err := jcs.Transform([]byte("[" + literal + "]"))
	if err != nil {
		return "", fmt.Errorf("format number at path '%s': %w", path, err)
	}

	return strings.TrimSuffix(strings.TrimPrefix(string(canonical), "["), "]"), nil
}

func numberLiteral(value interface{}) (string, bool) {
	switch n := value.(type) {
	case json.Number:
		return n.String(), n.String() != ""
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32), true
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	default:
		return "", false
	}
}
