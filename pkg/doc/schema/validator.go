/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package schema validates wrapped documents against JSON schemas of their proof envelopes.
package schema

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError is one schema violation.
type ValidationError struct {
	Field       string
	Type        string
	Description string
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// Validator validates documents against JSON schemas selected by key.
type Validator struct {
	loaders map[string]gojsonschema.JSONLoader
}

// Opt configures a Validator.
type Opt func(v *Validator)

// WithSchema adds or replaces the JSON schema stored under key.
func WithSchema(key, schema string) Opt {
	return func(v *Validator) {
		v.loaders[key] = gojsonschema.NewStringLoader(schema)
	}
}

// New returns a Validator holding the envelope schemas of every built-in shape.
func New(opts ...Opt) *Validator {
	v := &Validator{
		loaders: map[string]gojsonschema.JSONLoader{
			LegacyKey:     gojsonschema.NewStringLoader(schemaLegacy),
			CurrentKey:    gojsonschema.NewStringLoader(schemaCurrent),
			CredentialKey: gojsonschema.NewStringLoader(schemaCredential),
		},
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate returns the violations of doc against the schema stored under key.
// An unknown key or an unusable schema is reported as a violation.
func (v *Validator) Validate(doc map[string]interface{}, key string) []ValidationError {
	loader, ok := v.loaders[key]
	if !ok {
		return []ValidationError{{
			Field:       "(root)",
			Type:        "unknown_schema",
			Description: fmt.Sprintf("no schema registered for '%s'", key),
		}}
	}

	result, err := gojsonschema.Validate(loader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []ValidationError{{
			Field:       "(root)",
			Type:        "schema_error",
			Description: fmt.Sprintf("validation against schema '%s' failed: %v", key, err),
		}}
	}

	if result.Valid() {
		return nil
	}

	errs := make([]ValidationError, 0, len(result.Errors()))

	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:       desc.Field(),
			Type:        desc.Type(),
			Description: desc.Description(),
		})
	}

	return errs
}
