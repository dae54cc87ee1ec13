/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signer signs the merkle root of wrapped documents and verifies those signatures.
//
// Legacy documents collect one signature per key in a list. Current and credential documents
// accept a single signature. Obfuscation leaves the merkle root untouched, so a signed document
// may still be redacted afterwards.
package signer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/envelope"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/util"
	docjson "github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/util/json"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/cryptoutil"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/logutil"
)

const logModule = "wrapdoc/signer"

var logger = log.New(logModule)

var (
	// ErrUnsupportedAlgorithm is returned for algorithms without a registered Scheme.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

	// ErrKeyMismatch is returned when a key pair's public identifier does not match its private key.
	ErrKeyMismatch = errors.New("public key does not match private key")

	// ErrNotSigned is returned by VerifySignatures for documents without signatures.
	ErrNotSigned = errors.New("document is not signed")

	// ErrAlreadySigned is returned when the document already carries a signature from the key.
	ErrAlreadySigned = envelope.ErrAlreadySigned
)

type signOpts struct {
	schemes map[string]Scheme
	now     func() time.Time
}

// Opt configures Sign and VerifySignatures.
type Opt func(opts *signOpts)

// WithScheme registers an additional algorithm for one call.
func WithScheme(algorithm string, scheme Scheme) Opt {
	return func(opts *signOpts) {
		opts.schemes[algorithm] = scheme
	}
}

// WithTime sets the clock used for the "created" field of legacy signatures.
func WithTime(now func() time.Time) Opt {
	return func(opts *signOpts) {
		opts.now = now
	}
}

func newOpts(opts []Opt) *signOpts {
	o := &signOpts{
		schemes: map[string]Scheme{Secp256k1VerificationKey2018: secp256k1Scheme{}},
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *signOpts) scheme(algorithm string) (Scheme, error) {
	s, ok := o.schemes[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedAlgorithm, algorithm)
	}

	return s, nil
}

// Sign signs the merkle root of doc with key, which is a KeyPair, a *KeyPair or a Signer.
// The signing capability is called once and receives ctx.
func Sign(ctx context.Context, doc interface{}, algorithm string, key interface{},
	opts ...Opt) (map[string]interface{}, error) {
	o := newOpts(opts)

	scheme, err := o.scheme(algorithm)
	if err != nil {
		return nil, err
	}

	wrapped, strategy, proof, err := load(doc)
	if err != nil {
		return nil, err
	}

	// reject documents that cannot take another signature before reaching the signing capability
	if err = strategy.AddSignature(proof.Clone(), envelope.Signature{VerificationMethod: knownKeyID(key)}); err != nil {
		return nil, err
	}

	message, err := cryptoutil.DecodeHash(proof.MerkleRoot)
	if err != nil {
		return nil, fmt.Errorf("decode merkle root: %w", err)
	}

	keyID, signature, err := scheme.Sign(ctx, message, key)
	if err != nil {
		return nil, err
	}

	err = strategy.AddSignature(proof, envelope.Signature{
		Created:            util.FormatTimestamp(o.now()),
		VerificationMethod: keyID,
		Signature:          signature,
	})
	if err != nil {
		return nil, err
	}

	logutil.LogDebug(logger, "sign", "attach", "merkle root signed",
		logutil.CreateKeyValueString("shape", strategy.Shape()),
		logutil.CreateKeyValueString("key", keyID))

	return strategy.Attach(wrapped, proof), nil
}

// VerifySignatures reports whether every signature of doc recovers to the address named in its key id.
// Issuer identifiers are not resolved.
func VerifySignatures(doc interface{}, algorithm string, opts ...Opt) (bool, error) {
	scheme, err := newOpts(opts).scheme(algorithm)
	if err != nil {
		return false, err
	}

	_, _, proof, err := load(doc)
	if err != nil {
		return false, err
	}

	signatures := proof.Signed()
	if len(signatures) == 0 {
		return false, ErrNotSigned
	}

	message, err := cryptoutil.DecodeHash(proof.MerkleRoot)
	if err != nil {
		return false, fmt.Errorf("decode merkle root: %w", err)
	}

	for _, s := range signatures {
		ok, err := scheme.Verify(message, s.VerificationMethod, s.Signature)
		if err != nil {
			return false, err
		}

		if !ok {
			logutil.LogDebug(logger, "verifySignatures", "recover", "signature does not match key",
				logutil.CreateKeyValueString("key", s.VerificationMethod))

			return false, nil
		}
	}

	return true, nil
}

func load(doc interface{}) (map[string]interface{}, envelope.Strategy, *envelope.Proof, error) {
	wrapped, err := docjson.ToMap(doc)
	if err != nil {
		return nil, nil, nil, err
	}

	strategy, err := envelope.Resolve(wrapped)
	if err != nil {
		return nil, nil, nil, err
	}

	proof, err := strategy.Extract(wrapped)
	if err != nil {
		return nil, nil, nil, err
	}

	return wrapped, strategy, proof, nil
}

// knownKeyID is the key id of key when it can be told without calling a signing capability.
func knownKeyID(key interface{}) string {
	switch k := key.(type) {
	case KeyPair:
		return k.Public
	case *KeyPair:
		if k != nil {
			return k.Public
		}

		return ""
	default:
		return ""
	}
}
