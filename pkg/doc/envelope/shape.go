/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package envelope knows where each document shape keeps its proof envelope.
//
// Three shapes share one hashing core:
//
//	legacy      top-level "signature" envelope, obfuscated hashes under "privacy.obfuscatedData"
//	current     top-level "proof" envelope, obfuscated hashes under "proof.privacy.obfuscated"
//	credential  as current, plus "@context"; leaf preimages carry the value type
//
// Detect picks the shape from the structure of a document and For returns the Strategy that
// strips, reads and writes its envelope.
package envelope

import (
	"errors"
	"fmt"
)

// Shape is one of the supported document layouts.
type Shape int

const (
	// ShapeUnknown is the zero value and is never returned by Detect without an error.
	ShapeUnknown Shape = iota
	// ShapeLegacy keeps the envelope under "signature".
	ShapeLegacy
	// ShapeCurrent keeps the envelope under "proof".
	ShapeCurrent
	// ShapeCredential is ShapeCurrent aligned with the W3C verifiable credential data model.
	ShapeCredential
)

const (
	legacyKey  = "signature"
	proofKey   = "proof"
	privacyKey = "privacy"
	contextKey = "@context"
	targetKey  = "targetHash"
)

var (
	// ErrNoProof is returned when a document carries no proof envelope at all.
	ErrNoProof = errors.New("document has no proof envelope")

	// ErrUnsupportedShape is returned when an envelope is present but matches no known shape.
	ErrUnsupportedShape = errors.New("unsupported document shape")

	// ErrAlreadySigned is returned when a signature would be attached twice.
	ErrAlreadySigned = errors.New("document already signed")
)

func (s Shape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeCurrent:
		return "current"
	case ShapeCredential:
		return "credential"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape is the inverse of Shape.String.
func ParseShape(name string) (Shape, error) {
	for _, s := range []Shape{ShapeLegacy, ShapeCurrent, ShapeCredential} {
		if s.String() == name {
			return s, nil
		}
	}

	return ShapeUnknown, fmt.Errorf("%w: '%s'", ErrUnsupportedShape, name)
}

// Detect returns the shape of a wrapped document. A "proof" object with a target hash wins over
// "signature", since current and credential data may use "signature" as an ordinary field.
func Detect(doc map[string]interface{}) (Shape, error) {
	proof, hasProof := doc[proofKey]
	if hasProof && hasTargetHash(proof) {
		if _, ok := doc[contextKey]; ok {
			return ShapeCredential, nil
		}

		return ShapeCurrent, nil
	}

	legacyEnv, hasLegacy := doc[legacyKey]
	if hasLegacy && hasTargetHash(legacyEnv) {
		return ShapeLegacy, nil
	}

	switch {
	case hasProof:
		return ShapeUnknown, fmt.Errorf("%w: '%s' is not a merkle proof envelope", ErrUnsupportedShape, proofKey)
	case hasLegacy:
		return ShapeUnknown, fmt.Errorf("%w: '%s' is not a merkle proof envelope", ErrUnsupportedShape, legacyKey)
	default:
		return ShapeUnknown, ErrNoProof
	}
}

func hasTargetHash(raw interface{}) bool {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return false
	}

	_, ok = m[targetKey].(string)

	return ok
}
