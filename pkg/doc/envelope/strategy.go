/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package envelope

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/digest"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/salt"
)

// Strategy reads and writes the proof envelope of one shape.
type Strategy interface {
	Shape() Shape
	// ProofType is the envelope "type" written at wrap time.
	ProofType() string
	// SchemaKey selects the envelope schema used by the schema validator.
	SchemaKey() string
	LeafScheme() digest.Scheme
	// ReservedKeys are the top-level keys owned by the envelope.
	ReservedKeys() []string
	// Strip returns a shallow copy of doc without the envelope keys.
	Strip(doc map[string]interface{}) map[string]interface{}
	// Extract reads the envelope of doc.
	Extract(doc map[string]interface{}) (*Proof, error)
	// Attach returns a shallow copy of doc with its envelope replaced by p.
	Attach(doc map[string]interface{}, p *Proof) map[string]interface{}
	// AddSignature records s on p, or fails with ErrAlreadySigned.
	AddSignature(p *Proof, s Signature) error
	// Digest strips doc and computes its target hash.
	Digest(doc map[string]interface{}, salts []salt.Salt, obfuscated []string) (string, error)
	// SaltOpts configures salt generation for this shape. Empty objects and arrays are leaves in
	// every shape, so they are salted too.
	SaltOpts() []salt.Opt
}

// For returns the Strategy of a shape.
func For(shape Shape) (Strategy, error) {
	switch shape {
	case ShapeLegacy:
		return legacy{}, nil
	case ShapeCurrent:
		return merkleProof{shape: ShapeCurrent}, nil
	case ShapeCredential:
		return merkleProof{shape: ShapeCredential}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, shape)
	}
}

// Resolve detects the shape of doc and returns its Strategy.
func Resolve(doc map[string]interface{}) (Strategy, error) {
	shape, err := Detect(doc)
	if err != nil {
		return nil, err
	}

	return For(shape)
}

func strip(doc map[string]interface{}, reserved []string) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))

	for k, v := range doc {
		out[k] = v
	}

	for _, k := range reserved {
		delete(out, k)
	}

	return out
}

func envelopeOf(doc map[string]interface{}, key string) (map[string]interface{}, error) {
	raw, ok := doc[key]
	if !ok {
		return nil, ErrNoProof
	}

	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: '%s' is not an object", ErrUnsupportedShape, key)
	}

	return m, nil
}

func digestOf(s Strategy, doc map[string]interface{}, salts []salt.Salt, obfuscated []string) (string, error) {
	return digest.Compute(s.Strip(doc), salts, obfuscated,
		digest.WithScheme(s.LeafScheme()), digest.WithEmptyContainers(true))
}

func leafSaltOpts() []salt.Opt {
	return []salt.Opt{salt.WithEmptyContainers(true)}
}

type legacy struct{}

type legacyEnvelope struct {
	Type       string   `json:"type"`
	TargetHash string   `json:"targetHash"`
	MerkleRoot string   `json:"merkleRoot"`
	Proof      []string `json:"proof"`
	Salts      string   `json:"salts"`
}

type legacyPrivacy struct {
	ObfuscatedData []string `json:"obfuscatedData"`
}

func (legacy) Shape() Shape              { return ShapeLegacy }
func (legacy) ProofType() string         { return LegacyProofType }
func (legacy) SchemaKey() string         { return ShapeLegacy.String() }
func (legacy) LeafScheme() digest.Scheme { return digest.Untyped }
func (legacy) SaltOpts() []salt.Opt      { return leafSaltOpts() }

func (legacy) ReservedKeys() []string {
	return []string{legacyKey, privacyKey, proofKey}
}

func (l legacy) Strip(doc map[string]interface{}) map[string]interface{} {
	return strip(doc, l.ReservedKeys())
}

func (legacy) Extract(doc map[string]interface{}) (*Proof, error) {
	raw, err := envelopeOf(doc, legacyKey)
	if err != nil {
		return nil, err
	}

	var env legacyEnvelope

	if err = decode(raw, &env); err != nil {
		return nil, err
	}

	p := &Proof{
		Type:       env.Type,
		TargetHash: env.TargetHash,
		MerkleRoot: env.MerkleRoot,
		Proofs:     nonNil(env.Proof),
		Salts:      env.Salts,
		Obfuscated: []string{},
	}

	if raw, ok := doc[privacyKey]; ok {
		var privacy legacyPrivacy

		if err := decode(raw, &privacy); err != nil {
			return nil, err
		}

		p.Obfuscated = nonNil(privacy.ObfuscatedData)
	}

	if raw, ok := doc[proofKey]; ok {
		if err := decode(raw, &p.Signatures); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (l legacy) Attach(doc map[string]interface{}, p *Proof) map[string]interface{} {
	out := l.Strip(doc)

	out[legacyKey] = map[string]interface{}{
		"type":       l.ProofType(),
		"targetHash": p.TargetHash,
		"merkleRoot": p.MerkleRoot,
		"proof":      toList(p.Proofs),
		"salts":      p.Salts,
	}

	out[privacyKey] = map[string]interface{}{
		"obfuscatedData": toList(p.Obfuscated),
	}

	if len(p.Signatures) > 0 {
		list := make([]interface{}, 0, len(p.Signatures))

		for _, s := range p.Signatures {
			list = append(list, s.toMap())
		}

		out[proofKey] = list
	}

	return out
}

func (legacy) AddSignature(p *Proof, s Signature) error {
	for _, existing := range p.Signatures {
		if existing.VerificationMethod == s.VerificationMethod {
			return fmt.Errorf("%w: by '%s'", ErrAlreadySigned, s.VerificationMethod)
		}
	}

	if s.Type == "" {
		s.Type = SignatureType
	}

	if s.ProofPurpose == "" {
		s.ProofPurpose = AssertionMethod
	}

	p.Signatures = append(p.Signatures, s)

	return nil
}

func (l legacy) Digest(doc map[string]interface{}, salts []salt.Salt, obfuscated []string) (string, error) {
	return digestOf(l, doc, salts, obfuscated)
}

// merkleProof serves the current and credential shapes, which differ only in leaf hashing.
type merkleProof struct {
	shape Shape
}

type merkleEnvelope struct {
	Type         string   `json:"type"`
	ProofPurpose string   `json:"proofPurpose"`
	TargetHash   string   `json:"targetHash"`
	MerkleRoot   string   `json:"merkleRoot"`
	Proofs       []string `json:"proofs"`
	Salts        string   `json:"salts"`
	Privacy      struct {
		Obfuscated []string `json:"obfuscated"`
	} `json:"privacy"`
	Key       string `json:"key"`
	Signature string `json:"signature"`
}

func (m merkleProof) Shape() Shape      { return m.shape }
func (merkleProof) ProofType() string   { return MerkleProofType }
func (m merkleProof) SchemaKey() string { return m.shape.String() }

func (m merkleProof) LeafScheme() digest.Scheme {
	if m.shape == ShapeCredential {
		return digest.Typed
	}

	return digest.Untyped
}

func (merkleProof) SaltOpts() []salt.Opt {
	return leafSaltOpts()
}

func (merkleProof) ReservedKeys() []string {
	return []string{proofKey}
}

func (m merkleProof) Strip(doc map[string]interface{}) map[string]interface{} {
	return strip(doc, m.ReservedKeys())
}

func (merkleProof) Extract(doc map[string]interface{}) (*Proof, error) {
	raw, err := envelopeOf(doc, proofKey)
	if err != nil {
		return nil, err
	}

	var env merkleEnvelope

	if err = decode(raw, &env); err != nil {
		return nil, err
	}

	return &Proof{
		Type:         env.Type,
		ProofPurpose: env.ProofPurpose,
		TargetHash:   env.TargetHash,
		MerkleRoot:   env.MerkleRoot,
		Proofs:       nonNil(env.Proofs),
		Salts:        env.Salts,
		Obfuscated:   nonNil(env.Privacy.Obfuscated),
		Key:          env.Key,
		Signature:    env.Signature,
	}, nil
}

func (m merkleProof) Attach(doc map[string]interface{}, p *Proof) map[string]interface{} {
	out := m.Strip(doc)

	purpose := p.ProofPurpose
	if purpose == "" {
		purpose = AssertionMethod
	}

	env := map[string]interface{}{
		"type":         m.ProofType(),
		"proofPurpose": purpose,
		"targetHash":   p.TargetHash,
		"merkleRoot":   p.MerkleRoot,
		"proofs":       toList(p.Proofs),
		"salts":        p.Salts,
		"privacy": map[string]interface{}{
			"obfuscated": toList(p.Obfuscated),
		},
	}

	if p.Key != "" {
		env["key"] = p.Key
	}

	if p.Signature != "" {
		env["signature"] = p.Signature
	}

	out[proofKey] = env

	return out
}

func (merkleProof) AddSignature(p *Proof, s Signature) error {
	if p.Key != "" || p.Signature != "" {
		return fmt.Errorf("%w: by '%s'", ErrAlreadySigned, p.Key)
	}

	p.Key = s.VerificationMethod
	p.Signature = s.Signature

	return nil
}

func (m merkleProof) Digest(doc map[string]interface{}, salts []salt.Salt, obfuscated []string) (string, error) {
	return digestOf(m, doc, salts, obfuscated)
}
