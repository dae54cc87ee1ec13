/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package wrap turns raw documents into wrapped documents carrying a merkle proof envelope.
//
// Each document gets fresh salts and a target hash. A batch shares one merkle tree: every document
// records the common root and its own inclusion proof. A document wrapped alone has
// merkleRoot == targetHash and no proofs.
package wrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/envelope"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/merkle"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/salt"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/schema"
	docjson "github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/util/json"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/logutil"
)

const (
	logModule  = "wrapdoc/wrap"
	contextKey = "@context"
)

var logger = log.New(logModule)

// ErrReservedKey is returned when raw data already uses a key owned by the proof envelope.
var ErrReservedKey = errors.New("reserved key in document data")

// SchemaValidationError carries the schema violations of an assembled document.
type SchemaValidationError struct {
	Errors   []schema.ValidationError
	Document map[string]interface{}
}

func (e *SchemaValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))

	for _, ve := range e.Errors {
		msgs = append(msgs, ve.String())
	}

	return fmt.Sprintf("document not valid: %s", strings.Join(msgs, "; "))
}

type digested struct {
	data       map[string]interface{}
	salts      string
	targetHash string
}

// Wrap salts and digests a single document. data may be a map, a struct or raw JSON.
func Wrap(ctx context.Context, data interface{}, opts ...Opt) (map[string]interface{}, error) {
	docs, err := WrapMany(ctx, []interface{}{data}, opts...)
	if err != nil {
		return nil, err
	}

	return docs[0], nil
}

// WrapMany wraps a batch of documents under one merkle root. The result keeps the input order.
func WrapMany(ctx context.Context, data []interface{}, opts ...Opt) ([]map[string]interface{}, error) {
	o := newOpts(opts)

	strategy, err := envelope.For(o.shape)
	if err != nil {
		return nil, err
	}

	docs, err := docjson.ToMaps(data)
	if err != nil {
		return nil, err
	}

	for i, doc := range docs {
		if err = checkData(strategy, doc); err != nil {
			return nil, pkgerrors.Wrapf(err, "document %d", i)
		}
	}

	results, err := digestAll(ctx, strategy, docs, o)
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(results))

	for _, r := range results {
		targets = append(targets, r.targetHash)
	}

	tree, err := merkle.NewTreeFromHex(targets)
	if err != nil {
		return nil, err
	}

	root := tree.RootHex()
	wrapped := make([]map[string]interface{}, 0, len(results))

	for i, r := range results {
		proofs, err := tree.ProofHex(r.targetHash)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "document %d", i)
		}

		doc := strategy.Attach(r.data, &envelope.Proof{
			TargetHash: r.targetHash,
			MerkleRoot: root,
			Proofs:     proofs,
			Salts:      r.salts,
			Obfuscated: []string{},
		})

		if err = validate(ctx, strategy, doc, o); err != nil {
			return nil, pkgerrors.Wrapf(err, "document %d", i)
		}

		wrapped = append(wrapped, doc)
	}

	logutil.LogDebug(logger, "wrap", "assemble", "documents wrapped",
		logutil.CreateKeyValueString("shape", strategy.Shape()),
		logutil.CreateKeyValueString("documents", len(wrapped)),
		logutil.CreateKeyValueString("merkleRoot", root))

	return wrapped, nil
}

// digestAll computes salts and target hashes concurrently. It returns once every document is done.
func digestAll(ctx context.Context, strategy envelope.Strategy, docs []map[string]interface{},
	o *wrapOpts) ([]digested, error) {
	results := make([]digested, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i := range docs {
		i := i

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			r, err := digestOne(strategy, docs[i], o)
			if err != nil {
				return pkgerrors.Wrapf(err, "document %d", i)
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func digestOne(strategy envelope.Strategy, doc map[string]interface{}, o *wrapOpts) (digested, error) {
	saltOpts := append([]salt.Opt{salt.WithRandom(o.saltSource)}, strategy.SaltOpts()...)

	salts, err := salt.Generate(doc, saltOpts...)
	if err != nil {
		return digested{}, err
	}

	target, err := strategy.Digest(doc, salts, nil)
	if err != nil {
		return digested{}, err
	}

	encoded, err := salt.Encode(salts)
	if err != nil {
		return digested{}, err
	}

	return digested{data: doc, salts: encoded, targetHash: target}, nil
}

// checkData keeps raw data from colliding with the envelope or from being detected as another shape.
func checkData(strategy envelope.Strategy, doc map[string]interface{}) error {
	for _, k := range strategy.ReservedKeys() {
		if _, ok := doc[k]; ok {
			return fmt.Errorf("%w: '%s' is used by the %s proof envelope", ErrReservedKey, k, strategy.Shape())
		}
	}

	_, hasContext := doc[contextKey]

	switch {
	case strategy.Shape() == envelope.ShapeCredential && !hasContext:
		return fmt.Errorf("%w: credential documents require '%s'", envelope.ErrUnsupportedShape, contextKey)
	case strategy.Shape() == envelope.ShapeCurrent && hasContext:
		return fmt.Errorf("%w: documents with '%s' must be wrapped as %s",
			envelope.ErrUnsupportedShape, contextKey, envelope.ShapeCredential)
	}

	return nil
}

func validate(ctx context.Context, strategy envelope.Strategy, doc map[string]interface{}, o *wrapOpts) error {
	if o.schemaValidator != nil {
		if errs := o.schemaValidator.Validate(doc, strategy.SchemaKey()); len(errs) > 0 {
			return &SchemaValidationError{Errors: errs, Document: doc}
		}
	}

	if strategy.Shape() != envelope.ShapeCredential || o.semanticValidator == nil {
		return nil
	}

	return o.semanticValidator.Validate(ctx, doc)
}
