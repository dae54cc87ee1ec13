/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wrap

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/credential"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/envelope"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/merkle"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/salt"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/schema"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/verify"
	wrapmocks "github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/gomocks/doc/wrap"
)

func credentialData() map[string]interface{} {
	return map[string]interface{}{
		"@context": []interface{}{credential.ContextV2},
		"type":     []interface{}{credential.TypeVerifiableCredential},
		"issuer":   map[string]interface{}{"id": "did:ethr:0xE712878f6E8d5d4F9e87E10DA604F9cB564C9a89"},
		"credentialSubject": map[string]interface{}{
			"name":    "John Doe",
			"degrees": []interface{}{},
			"extra":   map[string]interface{}{},
		},
		"validFrom": "2021-03-08T12:00:00Z",
	}
}

func rawData(shape envelope.Shape) map[string]interface{} {
	if shape == envelope.ShapeCredential {
		return credentialData()
	}

	return map[string]interface{}{
		"name":    "John Doe",
		"age":     42,
		"address": map[string]interface{}{"city": "Berlin", "lines": []interface{}{"a", "b"}},
		"empty":   []interface{}{},
	}
}

func proofOf(t *testing.T, doc map[string]interface{}) *envelope.Proof {
	t.Helper()

	s, err := envelope.Resolve(doc)
	require.NoError(t, err)

	p, err := s.Extract(doc)
	require.NoError(t, err)

	return p
}

func TestWrap(t *testing.T) {
	t.Run("single document", func(t *testing.T) {
		doc, err := Wrap(context.Background(), map[string]interface{}{"name": "John Doe"})
		require.NoError(t, err)
		require.Equal(t, "John Doe", doc["name"])

		p := proofOf(t, doc)
		require.Equal(t, envelope.MerkleProofType, p.Type)
		require.Len(t, p.TargetHash, 64)
		require.Equal(t, p.TargetHash, p.MerkleRoot)
		require.Empty(t, p.Proofs)
		require.Empty(t, p.Obfuscated)

		salts, err := salt.Decode(p.Salts)
		require.NoError(t, err)
		require.Len(t, salts, 1)

		ok, err := verify.Verify(doc)
		require.NoError(t, err)
		require.True(t, ok)
	})

	for _, shape := range []envelope.Shape{envelope.ShapeLegacy, envelope.ShapeCurrent, envelope.ShapeCredential} {
		shape := shape
		t.Run("round trip "+shape.String(), func(t *testing.T) {
			doc, err := Wrap(context.Background(), rawData(shape), WithShape(shape))
			require.NoError(t, err)

			detected, err := envelope.Detect(doc)
			require.NoError(t, err)
			require.Equal(t, shape, detected)

			ok, err := verify.Verify(doc)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}

	t.Run("accepts structs and raw JSON", func(t *testing.T) {
		type person struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		}

		doc, err := Wrap(context.Background(), person{Name: "John Doe", Age: 42})
		require.NoError(t, err)
		require.Equal(t, "John Doe", doc["name"])

		doc, err = Wrap(context.Background(), []byte(`{"name":"John Doe","score":1.50}`))
		require.NoError(t, err)

		ok, err := verify.Verify(doc)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("input is not modified", func(t *testing.T) {
		data := rawData(envelope.ShapeCurrent)

		_, err := Wrap(context.Background(), data)
		require.NoError(t, err)
		require.Equal(t, rawData(envelope.ShapeCurrent), data)
	})

	t.Run("fresh salts on every wrap", func(t *testing.T) {
		data := map[string]interface{}{"name": "John Doe"}

		first, err := Wrap(context.Background(), data)
		require.NoError(t, err)

		second, err := Wrap(context.Background(), data)
		require.NoError(t, err)

		require.NotEqual(t, proofOf(t, first).TargetHash, proofOf(t, second).TargetHash)
		require.NotEqual(t, proofOf(t, first).MerkleRoot, proofOf(t, second).MerkleRoot)
	})

	t.Run("deterministic salt source", func(t *testing.T) {
		entropy := bytes.Repeat([]byte{7}, 10*salt.ByteLength)
		data := rawData(envelope.ShapeCurrent)

		first, err := Wrap(context.Background(), data, WithSaltSource(bytes.NewReader(entropy)))
		require.NoError(t, err)

		second, err := Wrap(context.Background(), data, WithSaltSource(bytes.NewReader(entropy)))
		require.NoError(t, err)

		require.Equal(t, first, second)
	})

	t.Run("error - reserved keys", func(t *testing.T) {
		_, err := Wrap(context.Background(), map[string]interface{}{"proof": "x"})
		require.ErrorIs(t, err, ErrReservedKey)
		require.Contains(t, err.Error(), "document 0")

		_, err = Wrap(context.Background(), map[string]interface{}{"privacy": "x"}, WithShape(envelope.ShapeLegacy))
		require.ErrorIs(t, err, ErrReservedKey)

		_, err = Wrap(context.Background(), map[string]interface{}{"signature": "x"}, WithShape(envelope.ShapeLegacy))
		require.ErrorIs(t, err, ErrReservedKey)
	})

	t.Run("error - shape and context disagree", func(t *testing.T) {
		_, err := Wrap(context.Background(), map[string]interface{}{"name": "x"}, WithShape(envelope.ShapeCredential))
		require.ErrorIs(t, err, envelope.ErrUnsupportedShape)

		_, err = Wrap(context.Background(), credentialData())
		require.ErrorIs(t, err, envelope.ErrUnsupportedShape)

		_, err = Wrap(context.Background(), credentialData(), WithShape(envelope.ShapeUnknown))
		require.ErrorIs(t, err, envelope.ErrUnsupportedShape)
	})

	t.Run("error - key with path delimiter", func(t *testing.T) {
		_, err := Wrap(context.Background(), map[string]interface{}{
			"credentialSubject": map[string]interface{}{"alumni.of": "x"},
		})
		require.ErrorIs(t, err, salt.ErrInvalidKey)
		require.Contains(t, err.Error(), "credentialSubject.alumni.of")
	})

	t.Run("error - not an object", func(t *testing.T) {
		_, err := Wrap(context.Background(), []interface{}{"a"})
		require.Error(t, err)
	})

	t.Run("error - short salt source", func(t *testing.T) {
		_, err := Wrap(context.Background(), map[string]interface{}{"a": "b"}, WithSaltSource(bytes.NewReader([]byte{1})))
		require.Error(t, err)
		require.Contains(t, err.Error(), "read salt entropy")
	})

	t.Run("error - default credential validator", func(t *testing.T) {
		data := credentialData()
		delete(data, "issuer")

		_, err := Wrap(context.Background(), data, WithShape(envelope.ShapeCredential))
		require.ErrorIs(t, err, credential.ErrInvalidCredential)
	})

	t.Run("error - cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Wrap(ctx, map[string]interface{}{"a": "b"})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestWrapValidators(t *testing.T) {
	t.Run("schema violations are fatal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		violations := []schema.ValidationError{{Field: "proof.salts", Type: "required", Description: "salts is required"}}

		sv := wrapmocks.NewMockSchemaValidator(ctrl)
		sv.EXPECT().Validate(gomock.Any(), schema.CurrentKey).Return(violations).Times(1)

		_, err := Wrap(context.Background(), map[string]interface{}{"a": "b"}, WithSchemaValidator(sv))
		require.Error(t, err)

		var sve *SchemaValidationError
		require.True(t, errors.As(err, &sve))
		require.Equal(t, violations, sve.Errors)
		require.Equal(t, "b", sve.Document["a"])
		require.Contains(t, err.Error(), "proof.salts: salts is required")
	})

	t.Run("semantic validator runs for credentials only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ctx := context.Background()

		sem := wrapmocks.NewMockSemanticValidator(ctrl)
		sem.EXPECT().Validate(ctx, gomock.Any()).Return(nil).Times(1)

		sv := wrapmocks.NewMockSchemaValidator(ctrl)
		sv.EXPECT().Validate(gomock.Any(), schema.CredentialKey).Return(nil).Times(1)
		sv.EXPECT().Validate(gomock.Any(), schema.CurrentKey).Return(nil).Times(1)

		_, err := Wrap(ctx, credentialData(), WithShape(envelope.ShapeCredential),
			WithSchemaValidator(sv), WithSemanticValidator(sem))
		require.NoError(t, err)

		_, err = Wrap(ctx, map[string]interface{}{"a": "b"}, WithSchemaValidator(sv), WithSemanticValidator(sem))
		require.NoError(t, err)
	})

	t.Run("semantic failure is fatal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		semErr := errors.New("bad dates")

		sem := wrapmocks.NewMockSemanticValidator(ctrl)
		sem.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(semErr)

		_, err := Wrap(context.Background(), credentialData(), WithShape(envelope.ShapeCredential),
			WithoutSchemaValidation(), WithSemanticValidator(sem))
		require.ErrorIs(t, err, semErr)
	})
}

func TestWrapMany(t *testing.T) {
	t.Run("two documents share a root", func(t *testing.T) {
		docs, err := WrapMany(context.Background(), []interface{}{
			map[string]interface{}{"name": "John Doe"},
			map[string]interface{}{"name": "Jane Doe"},
		})
		require.NoError(t, err)
		require.Len(t, docs, 2)

		first, second := proofOf(t, docs[0]), proofOf(t, docs[1])
		require.Equal(t, first.MerkleRoot, second.MerkleRoot)
		require.NotEqual(t, first.TargetHash, first.MerkleRoot)
		require.Equal(t, []string{second.TargetHash}, first.Proofs)
		require.Equal(t, []string{first.TargetHash}, second.Proofs)

		require.Equal(t, "John Doe", docs[0]["name"])
		require.Equal(t, "Jane Doe", docs[1]["name"])
	})

	for _, shape := range []envelope.Shape{envelope.ShapeLegacy, envelope.ShapeCurrent, envelope.ShapeCredential} {
		shape := shape
		t.Run("batch of seven "+shape.String(), func(t *testing.T) {
			data := make([]interface{}, 0, 7)
			for i := 0; i < 7; i++ {
				data = append(data, rawData(shape))
			}

			docs, err := WrapMany(context.Background(), data, WithShape(shape), WithConcurrency(2))
			require.NoError(t, err)
			require.Len(t, docs, 7)

			root := proofOf(t, docs[0]).MerkleRoot

			for _, doc := range docs {
				p := proofOf(t, doc)
				require.Equal(t, root, p.MerkleRoot)
				require.True(t, merkle.CheckProofHex(p.Proofs, p.MerkleRoot, p.TargetHash))

				ok, err := verify.Verify(doc)
				require.NoError(t, err)
				require.True(t, ok)
			}
		})
	}

	t.Run("empty batch", func(t *testing.T) {
		docs, err := WrapMany(context.Background(), nil)
		require.NoError(t, err)
		require.Empty(t, docs)
	})

	t.Run("error names the failing document", func(t *testing.T) {
		_, err := WrapMany(context.Background(), []interface{}{
			map[string]interface{}{"a": "b"},
			map[string]interface{}{"a.b": "c"},
		}, WithConcurrency(0))
		require.ErrorIs(t, err, salt.ErrInvalidKey)
		require.Contains(t, err.Error(), "document 1")
	})
}

func TestWrapSaltsEmptyContainers(t *testing.T) {
	for _, shape := range []envelope.Shape{envelope.ShapeLegacy, envelope.ShapeCurrent, envelope.ShapeCredential} {
		doc, err := Wrap(context.Background(), rawData(shape), WithShape(shape))
		require.NoError(t, err)

		salts, err := salt.Decode(proofOf(t, doc).Salts)
		require.NoError(t, err)

		paths := salt.ToMap(salts)

		if shape == envelope.ShapeCredential {
			require.Contains(t, paths, "credentialSubject.degrees")
			require.Contains(t, paths, "credentialSubject.extra")

			continue
		}

		require.Contains(t, paths, "empty", shape.String())
	}
}
