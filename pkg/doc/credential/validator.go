/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credential checks wrapped documents against the W3C verifiable credential data model.
package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/piprate/json-gold/ld"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/util"
)

const (
	// ContextV2 must be the first entry of "@context".
	ContextV2 = "https://www.w3.org/ns/credentials/v2"
	// TypeVerifiableCredential must be one of the entries of "type".
	TypeVerifiableCredential = "VerifiableCredential"

	proofKey = "proof"
)

// ErrInvalidCredential is returned for documents that do not follow the credential data model.
var ErrInvalidCredential = errors.New("invalid credential")

// Validator checks context, type, issuer, subject and validity period of a credential.
type Validator struct {
	loader ld.DocumentLoader
}

// Opt configures a Validator.
type Opt func(v *Validator)

// WithDocumentLoader enables JSON-LD expansion, so every context must resolve through loader.
func WithDocumentLoader(loader ld.DocumentLoader) Opt {
	return func(v *Validator) {
		v.loader = loader
	}
}

// NewValidator creates a Validator.
func NewValidator(opts ...Opt) *Validator {
	v := &Validator{}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate returns an error wrapping ErrInvalidCredential when doc is not a well formed credential.
func (v *Validator) Validate(ctx context.Context, doc map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	checks := []func(map[string]interface{}) error{
		checkContext,
		checkType,
		checkIssuer,
		checkSubject,
		checkValidity,
	}

	for _, check := range checks {
		if err := check(doc); err != nil {
			return err
		}
	}

	if v.loader == nil {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return v.expand(doc)
}

func (v *Validator) expand(doc map[string]interface{}) error {
	input, err := plainJSON(doc)
	if err != nil {
		return err
	}

	delete(input, proofKey)

	options := ld.NewJsonLdOptions("")
	options.ProcessingMode = ld.JsonLd_1_1
	options.DocumentLoader = v.loader

	if _, err = ld.NewJsonLdProcessor().Expand(input, options); err != nil {
		return fmt.Errorf("%w: expand JSON-LD: %v", ErrInvalidCredential, err)
	}

	return nil
}

func checkContext(doc map[string]interface{}) error {
	contexts, ok := doc["@context"].([]interface{})
	if !ok || len(contexts) == 0 {
		return fmt.Errorf("%w: '@context' must be a non-empty array", ErrInvalidCredential)
	}

	if first, _ := contexts[0].(string); first != ContextV2 {
		return fmt.Errorf("%w: first '@context' entry must be '%s'", ErrInvalidCredential, ContextV2)
	}

	return nil
}

func checkType(doc map[string]interface{}) error {
	switch t := doc["type"].(type) {
	case string:
		if t == TypeVerifiableCredential {
			return nil
		}
	case []interface{}:
		for _, e := range t {
			if e == TypeVerifiableCredential {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: 'type' must include '%s'", ErrInvalidCredential, TypeVerifiableCredential)
}

func checkIssuer(doc map[string]interface{}) error {
	switch issuer := doc["issuer"].(type) {
	case string:
		if issuer != "" {
			return nil
		}
	case map[string]interface{}:
		if id, _ := issuer["id"].(string); id != "" {
			return nil
		}
	}

	return fmt.Errorf("%w: 'issuer' must be a string or an object with an 'id'", ErrInvalidCredential)
}

func checkSubject(doc map[string]interface{}) error {
	switch subject := doc["credentialSubject"].(type) {
	case map[string]interface{}:
		return nil
	case []interface{}:
		if len(subject) > 0 {
			return nil
		}
	}

	return fmt.Errorf("%w: 'credentialSubject' is required", ErrInvalidCredential)
}

func checkValidity(doc map[string]interface{}) error {
	from, hasFrom, err := timestamp(doc, "validFrom")
	if err != nil {
		return err
	}

	until, hasUntil, err := timestamp(doc, "validUntil")
	if err != nil {
		return err
	}

	if hasFrom && hasUntil && until.Before(from) {
		return fmt.Errorf("%w: 'validUntil' is before 'validFrom'", ErrInvalidCredential)
	}

	return nil
}

func timestamp(doc map[string]interface{}, key string) (t time.Time, present bool, err error) {
	raw, ok := doc[key]
	if !ok {
		return time.Time{}, false, nil
	}

	s, ok := raw.(string)
	if !ok {
		return time.Time{}, true, fmt.Errorf("%w: '%s' must be a string", ErrInvalidCredential, key)
	}

	parsed, err := util.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("%w: '%s' is not an RFC 3339 timestamp: %v", ErrInvalidCredential, key, err)
	}

	return parsed, true, nil
}

// plainJSON copies doc with numbers decoded as float64, which is what json-gold expects.
func plainJSON(doc map[string]interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal credential: %w", err)
	}

	var out map[string]interface{}

	if err = json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	return out, nil
}
