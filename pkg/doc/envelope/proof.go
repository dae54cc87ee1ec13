/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package envelope

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

const (
	// LegacyProofType is the envelope type of legacy documents.
	LegacyProofType = "SHA3MerkleProof"
	// MerkleProofType is the envelope type of current and credential documents.
	MerkleProofType = "OpenAttestationMerkleProofSignature2018"
	// SignatureType is the type of each entry in the legacy signature list.
	SignatureType = "OpenAttestationSignature2018"
	// AssertionMethod is the proof purpose written by this package.
	AssertionMethod = "assertionMethod"
)

// Proof is the shape independent view of a proof envelope.
type Proof struct {
	Type         string
	ProofPurpose string
	TargetHash   string
	MerkleRoot   string
	Proofs       []string
	Salts        string
	Obfuscated   []string

	// Key and Signature hold the single signature of current and credential documents.
	Key       string
	Signature string

	// Signatures holds the signature list of legacy documents.
	Signatures []Signature
}

// Signature is one issuer signature over the merkle root.
type Signature struct {
	Type               string `json:"type,omitempty"`
	Created            string `json:"created,omitempty"`
	ProofPurpose       string `json:"proofPurpose,omitempty"`
	VerificationMethod string `json:"verificationMethod"`
	Signature          string `json:"signature"`
}

// Signed lists every signature attached to the proof regardless of shape.
func (p *Proof) Signed() []Signature {
	if len(p.Signatures) > 0 {
		return append([]Signature(nil), p.Signatures...)
	}

	if p.Key == "" && p.Signature == "" {
		return nil
	}

	return []Signature{{VerificationMethod: p.Key, Signature: p.Signature}}
}

// Clone returns a deep copy of p.
func (p *Proof) Clone() *Proof {
	c := *p
	c.Proofs = append([]string{}, p.Proofs...)
	c.Obfuscated = append([]string{}, p.Obfuscated...)
	c.Signatures = append([]Signature(nil), p.Signatures...)

	return &c
}

func (s Signature) toMap() map[string]interface{} {
	m := map[string]interface{}{
		"verificationMethod": s.VerificationMethod,
		"signature":          s.Signature,
	}

	for k, v := range map[string]string{"type": s.Type, "created": s.Created, "proofPurpose": s.ProofPurpose} {
		if v != "" {
			m[k] = v
		}
	}

	return m
}

func decode(input, result interface{}) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  result,
		TagName: "json",
	})
	if err != nil {
		return fmt.Errorf("mapstruct envelope. error: %w", err)
	}

	if err = d.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedShape, err)
	}

	return nil
}

func toList(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))

	for _, v := range values {
		out = append(out, v)
	}

	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
