/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package obfuscate redacts fields of a wrapped document without changing its target hash.
//
// Every leaf under a redacted field is replaced by its leaf commitment in the obfuscated set
// and its salt is dropped, so the verifier recomputes the same target hash from what is left.
package obfuscate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/digest"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/envelope"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/flatten"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/salt"
	docjson "github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/util/json"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/logutil"
)

const logModule = "wrapdoc/obfuscate"

var logger = log.New(logModule)

var (
	// ErrFieldNotFound is returned when a requested path is not part of the visible data.
	ErrFieldNotFound = errors.New("field not found")

	// ErrArrayElement is returned for paths that end in an array index.
	// Removing an element would shift the paths of its siblings.
	ErrArrayElement = errors.New("array elements cannot be obfuscated individually")

	// ErrEmptyContainer is returned when redaction would leave an empty object or array behind.
	ErrEmptyContainer = errors.New("obfuscation would leave an empty container")
)

// EmptyContainerError lists the containers that redaction would leave empty.
type EmptyContainerError struct {
	Paths []string
}

func (e *EmptyContainerError) Error() string {
	return fmt.Sprintf("%s: %s", ErrEmptyContainer, strings.Join(e.Paths, ", "))
}

// Is matches ErrEmptyContainer.
func (e *EmptyContainerError) Is(target error) bool {
	return target == ErrEmptyContainer
}

type target struct {
	path     string
	segments []flatten.Segment
}

// Obfuscate returns a copy of the wrapped document doc with the given field paths redacted.
// doc may be a map, a struct or raw JSON. The input is never modified.
func Obfuscate(doc interface{}, paths ...string) (map[string]interface{}, error) {
	wrapped, err := docjson.ToMap(doc)
	if err != nil {
		return nil, err
	}

	strategy, err := envelope.Resolve(wrapped)
	if err != nil {
		return nil, err
	}

	proof, err := strategy.Extract(wrapped)
	if err != nil {
		return nil, err
	}

	salts, err := salt.Decode(proof.Salts)
	if err != nil {
		return nil, err
	}

	data := strategy.Strip(wrapped)

	targets, err := resolveTargets(data, paths)
	if err != nil {
		return nil, err
	}

	hashes, consumed, err := commitments(strategy, data, targets, salt.ToMap(salts))
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		if _, err = flatten.Delete(data, t.segments); err != nil {
			return nil, err
		}
	}

	if err = checkEmptyContainers(data, targets); err != nil {
		return nil, err
	}

	remaining := make([]salt.Salt, 0, len(salts))

	for _, s := range salts {
		if !consumed[s.Path] {
			remaining = append(remaining, s)
		}
	}

	encoded, err := salt.Encode(remaining)
	if err != nil {
		return nil, err
	}

	updated := proof.Clone()
	updated.Salts = encoded
	updated.Obfuscated = append(updated.Obfuscated, hashes...)

	logutil.LogDebug(logger, "obfuscate", "redact", "fields redacted",
		logutil.CreateKeyValueString("shape", strategy.Shape()),
		logutil.CreateKeyValueString("fields", len(targets)),
		logutil.CreateKeyValueString("leaves", len(hashes)))

	return strategy.Attach(data, updated), nil
}

// resolveTargets parses and checks every requested path before anything is removed. A path below
// another requested path is dropped since its parent covers it.
func resolveTargets(data map[string]interface{}, paths []string) ([]target, error) {
	targets := make([]target, 0, len(paths))
	seen := make(map[string]bool, len(paths))

	for _, p := range paths {
		segments, err := flatten.Parse(p)
		if err != nil {
			return nil, err
		}

		if segments[len(segments)-1].IsIndex {
			return nil, fmt.Errorf("%w: '%s'", ErrArrayElement, p)
		}

		if _, ok := flatten.Lookup(data, segments); !ok {
			return nil, fmt.Errorf("%w: '%s'", ErrFieldNotFound, p)
		}

		normalized := flatten.Format(segments)
		if seen[normalized] {
			continue
		}

		seen[normalized] = true

		targets = append(targets, target{path: normalized, segments: segments})
	}

	covered := make([]target, 0, len(targets))

	for _, t := range targets {
		if !hasRequestedAncestor(t, seen) {
			covered = append(covered, t)
		}
	}

	return covered, nil
}

func hasRequestedAncestor(t target, requested map[string]bool) bool {
	for i := len(t.segments) - 1; i > 0; i-- {
		if requested[flatten.Format(t.segments[:i])] {
			return true
		}
	}

	return false
}

// commitments recomputes the leaf commitment of every leaf below targets.
func commitments(strategy envelope.Strategy, data map[string]interface{}, targets []target,
	saltByPath map[string]string) ([]string, map[string]bool, error) {
	var hashes []string

	consumed := make(map[string]bool)

	for _, t := range targets {
		value, _ := flatten.Lookup(data, t.segments)

		err := flatten.Walk(value, t.path, func(path string, leaf interface{}) error {
			s, ok := saltByPath[path]
			if !ok {
				return &digest.SaltNotFoundError{Path: path}
			}

			h, err := digest.HashLeaf(strategy.LeafScheme(), path, s, leaf)
			if err != nil {
				return err
			}

			hashes = append(hashes, h)
			consumed[path] = true

			return nil
		}, flatten.WithEmptyContainers(true))
		if err != nil {
			return nil, nil, err
		}
	}

	return hashes, consumed, nil
}

// checkEmptyContainers rejects redactions that leave the parent of a removed field empty.
// An empty container is a leaf, and the one left behind would have no salt.
func checkEmptyContainers(data map[string]interface{}, targets []target) error {
	empty := make(map[string]bool)

	for _, t := range targets {
		if len(t.segments) < 2 {
			continue
		}

		parent := t.segments[:len(t.segments)-1]

		value, ok := flatten.Lookup(data, parent)
		if !ok {
			continue
		}

		if m, isMap := value.(map[string]interface{}); isMap && len(m) == 0 {
			empty[flatten.Format(parent)] = true
		}
	}

	if len(empty) == 0 {
		return nil
	}

	paths := make([]string, 0, len(empty))

	for p := range empty {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return &EmptyContainerError{Paths: paths}
}
