/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wrap

import (
	"context"
	"crypto/rand"
	"io"
	"runtime"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/credential"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/envelope"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/schema"
)

// SchemaValidator checks an assembled document against the schema stored under key.
type SchemaValidator interface {
	Validate(doc map[string]interface{}, key string) []schema.ValidationError
}

// SemanticValidator checks the data model of credential documents.
type SemanticValidator interface {
	Validate(ctx context.Context, doc map[string]interface{}) error
}

type wrapOpts struct {
	shape             envelope.Shape
	schemaValidator   SchemaValidator
	semanticValidator SemanticValidator
	saltSource        io.Reader
	concurrency       int
}

// Opt configures Wrap and WrapMany.
type Opt func(opts *wrapOpts)

// WithShape selects the envelope layout. Defaults to envelope.ShapeCurrent.
func WithShape(shape envelope.Shape) Opt {
	return func(opts *wrapOpts) {
		opts.shape = shape
	}
}

// WithSchemaValidator replaces the default envelope schema validator.
func WithSchemaValidator(v SchemaValidator) Opt {
	return func(opts *wrapOpts) {
		opts.schemaValidator = v
	}
}

// WithoutSchemaValidation skips schema validation.
func WithoutSchemaValidation() Opt {
	return func(opts *wrapOpts) {
		opts.schemaValidator = nil
	}
}

// WithSemanticValidator replaces the validator run on credential documents.
func WithSemanticValidator(v SemanticValidator) Opt {
	return func(opts *wrapOpts) {
		opts.semanticValidator = v
	}
}

// WithSaltSource sets the entropy source of salts. Reads are serialised, so r need not be safe
// for concurrent use.
func WithSaltSource(r io.Reader) Opt {
	return func(opts *wrapOpts) {
		opts.saltSource = &lockedReader{r: r}
	}
}

// WithConcurrency bounds the number of documents digested in parallel by WrapMany.
func WithConcurrency(n int) Opt {
	return func(opts *wrapOpts) {
		opts.concurrency = n
	}
}

func newOpts(opts []Opt) *wrapOpts {
	o := &wrapOpts{
		shape:             envelope.ShapeCurrent,
		schemaValidator:   schema.New(),
		semanticValidator: credential.NewValidator(),
		saltSource:        rand.Reader,
		concurrency:       runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.concurrency < 1 {
		o.concurrency = 1
	}

	return o
}

type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

// Read fills p completely so that a salt is never split between two callers.
func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return io.ReadFull(l.r, p)
}
