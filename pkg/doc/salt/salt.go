/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package salt assigns a random salt to every leaf of a document and (de)serialises the salt list.
package salt

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/flatten"
)

// ByteLength is the entropy of a single salt in bytes.
const ByteLength = 32

// pathDelimiters may not appear in document keys since they would make flattened paths ambiguous.
const pathDelimiters = ".[]"

var (
	// ErrMalformedSalt is returned when encoded salts cannot be decoded or a salt has the wrong length.
	ErrMalformedSalt = errors.New("malformed salt")

	// ErrInvalidKey is returned when a document key contains a path delimiter.
	ErrInvalidKey = errors.New("invalid key")
)

// Salt binds a random value to a leaf path.
type Salt struct {
	Value string `json:"value"`
	Path  string `json:"path"`
}

type generateOpts struct {
	random          io.Reader
	emptyContainers bool
}

// Opt configures Generate.
type Opt func(opts *generateOpts)

// WithRandom sets the entropy source. Mostly used for testing.
func WithRandom(r io.Reader) Opt {
	return func(opts *generateOpts) {
		opts.random = r
	}
}

// WithEmptyContainers salts empty objects and arrays as leaves.
func WithEmptyContainers(flag bool) Opt {
	return func(opts *generateOpts) {
		opts.emptyContainers = flag
	}
}

// Generate validates the keys of doc and returns one fresh salt per leaf path.
func Generate(doc map[string]interface{}, opts ...Opt) ([]Salt, error) {
	o := &generateOpts{random: rand.Reader}

	for _, opt := range opts {
		opt(o)
	}

	if err := ValidateKeys(doc); err != nil {
		return nil, err
	}

	if len(doc) == 0 {
		return []Salt{}, nil
	}

	salts := []Salt{}

	err := flatten.Walk(doc, "", func(path string, _ interface{}) error {
		value, err := newValue(o.random)
		if err != nil {
			return err
		}

		salts = append(salts, Salt{Value: value, Path: path})

		return nil
	}, flatten.WithEmptyContainers(o.emptyContainers))
	if err != nil {
		return nil, err
	}

	return salts, nil
}

// ValidateKeys rejects any object key, at any depth, that contains '.', '[' or ']'.
func ValidateKeys(v interface{}) error {
	return validateKeys(v, "")
}

func validateKeys(v interface{}, path string) error {
	switch cv := v.(type) {
	case map[string]interface{}:
		for k, e := range cv {
			p := flatten.JoinKey(path, k)

			if strings.ContainsAny(k, pathDelimiters) {
				return fmt.Errorf("%w: key '%s' must not contain any of '%s'", ErrInvalidKey, p, pathDelimiters)
			}

			if err := validateKeys(e, p); err != nil {
				return err
			}
		}
	case []interface{}:
		for i, e := range cv {
			if err := validateKeys(e, flatten.JoinIndex(path, i)); err != nil {
				return err
			}
		}
	}

	return nil
}

// Encode serialises salts as base64 encoded JSON.
func Encode(salts []Salt) (string, error) {
	if salts == nil {
		salts = []Salt{}
	}

	b, err := json.Marshal(salts)
	if err != nil {
		return "", fmt.Errorf("marshal salts: %w", err)
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode parses salts produced by Encode and checks that every salt carries ByteLength bytes of entropy.
// A short salt would make a redacted value guessable, so it is never accepted.
func Decode(encoded string) ([]Salt, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrMalformedSalt, err)
	}

	var salts []Salt

	if err = json.Unmarshal(b, &salts); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrMalformedSalt, err)
	}

	seen := make(map[string]bool, len(salts))

	for _, s := range salts {
		if err = checkEntropy(s); err != nil {
			return nil, err
		}

		if seen[s.Path] {
			return nil, fmt.Errorf("%w: duplicate salt for path '%s'", ErrMalformedSalt, s.Path)
		}

		seen[s.Path] = true
	}

	if salts == nil {
		salts = []Salt{}
	}

	return salts, nil
}

// ToMap indexes salt values by path.
func ToMap(salts []Salt) map[string]string {
	m := make(map[string]string, len(salts))

	for _, s := range salts {
		m[s.Path] = s.Value
	}

	return m
}

func checkEntropy(s Salt) error {
	raw, err := hex.DecodeString(s.Value)
	if err != nil {
		return fmt.Errorf("%w: salt for path '%s' is not hex: %v", ErrMalformedSalt, s.Path, err)
	}

	if len(raw) != ByteLength {
		return fmt.Errorf("%w: salt for path '%s' has %d bytes of entropy, expected %d",
			ErrMalformedSalt, s.Path, len(raw), ByteLength)
	}

	return nil
}

func newValue(r io.Reader) (string, error) {
	b := make([]byte, ByteLength)

	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("read salt entropy: %w", err)
	}

	return hex.EncodeToString(b), nil
}
