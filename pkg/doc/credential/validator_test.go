/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/ldcontext"
)

const testV2Context = `{"@context": {"@version": 1.1, "@vocab": "https://www.w3.org/ns/credentials/issuer-dependent#"}}`

func credentialDoc() map[string]interface{} {
	return map[string]interface{}{
		"@context":          []interface{}{ContextV2},
		"type":              []interface{}{TypeVerifiableCredential, "UniversityDegreeCredential"},
		"issuer":            map[string]interface{}{"id": "did:ethr:0x1234", "name": "University"},
		"validFrom":         "2021-03-08T12:00:00Z",
		"validUntil":        "2031-03-08T12:00:00Z",
		"credentialSubject": map[string]interface{}{"id": "did:example:abc", "gpa": json.Number("3.5")},
		"proof":             map[string]interface{}{"targetHash": "abc"},
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.Validate(context.Background(), credentialDoc()))

		simple := credentialDoc()
		simple["type"] = TypeVerifiableCredential
		simple["issuer"] = "did:ethr:0x1234"
		simple["credentialSubject"] = []interface{}{map[string]interface{}{"id": "did:example:abc"}}
		delete(simple, "validUntil")
		require.NoError(t, v.Validate(context.Background(), simple))
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(doc map[string]interface{})
			errMsg string
		}{
			{"missing context", func(d map[string]interface{}) { delete(d, "@context") }, "'@context'"},
			{"context not an array", func(d map[string]interface{}) { d["@context"] = ContextV2 }, "'@context'"},
			{"wrong first context", func(d map[string]interface{}) {
				d["@context"] = []interface{}{"https://example.com", ContextV2}
			}, "first '@context'"},
			{"missing type", func(d map[string]interface{}) { d["type"] = []interface{}{"Other"} }, "'type'"},
			{"empty issuer", func(d map[string]interface{}) { d["issuer"] = "" }, "'issuer'"},
			{"issuer without id", func(d map[string]interface{}) {
				d["issuer"] = map[string]interface{}{"name": "x"}
			}, "'issuer'"},
			{"missing subject", func(d map[string]interface{}) { delete(d, "credentialSubject") }, "'credentialSubject'"},
			{"empty subject list", func(d map[string]interface{}) {
				d["credentialSubject"] = []interface{}{}
			}, "'credentialSubject'"},
			{"bad validFrom", func(d map[string]interface{}) { d["validFrom"] = "March 2021" }, "'validFrom'"},
			{"numeric validUntil", func(d map[string]interface{}) { d["validUntil"] = json.Number("1") }, "'validUntil'"},
			{"until before from", func(d map[string]interface{}) {
				d["validUntil"] = "2020-01-01T00:00:00Z"
			}, "before"},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				doc := credentialDoc()
				tc.mutate(doc)

				err := v.Validate(context.Background(), doc)
				require.ErrorIs(t, err, ErrInvalidCredential)
				require.Contains(t, err.Error(), tc.errMsg)
			})
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.ErrorIs(t, v.Validate(ctx, credentialDoc()), context.Canceled)
	})
}

func TestValidateWithDocumentLoader(t *testing.T) {
	loader, err := ldcontext.New(ldcontext.WithContext(ContextV2, []byte(testV2Context)))
	require.NoError(t, err)

	v := NewValidator(WithDocumentLoader(loader))

	t.Run("known contexts expand", func(t *testing.T) {
		require.NoError(t, v.Validate(context.Background(), credentialDoc()))
	})

	t.Run("error - unresolvable context", func(t *testing.T) {
		doc := credentialDoc()
		doc["@context"] = []interface{}{ContextV2, "https://example.com/unknown/v1"}

		err := v.Validate(context.Background(), doc)
		require.ErrorIs(t, err, ErrInvalidCredential)
		require.Contains(t, err.Error(), "expand JSON-LD")
	})

	t.Run("input is not modified", func(t *testing.T) {
		doc := credentialDoc()
		require.NoError(t, v.Validate(context.Background(), doc))
		require.Contains(t, doc, "proof")
		require.Equal(t, json.Number("3.5"), doc["credentialSubject"].(map[string]interface{})["gpa"])
	})
}
