/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verify checks that a wrapped document still matches its proof envelope.
package verify

import (
	"errors"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/digest"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/envelope"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/flatten"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/merkle"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/salt"
	docjson "github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/doc/util/json"
	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/logutil"
)

const logModule = "wrapdoc/verify"

var logger = log.New(logModule)

// Verify reports whether doc is an untampered wrapped document.
//
// A document without a proof envelope, or whose visible data, salts, obfuscated set, target hash
// or merkle proof disagree, yields false. An error is returned only when no judgement is possible:
// the input is not a JSON object, the shape is unknown, or the salts cannot be decoded.
func Verify(doc interface{}) (bool, error) {
	wrapped, err := docjson.ToMap(doc)
	if err != nil {
		return false, err
	}

	strategy, err := envelope.Resolve(wrapped)
	if errors.Is(err, envelope.ErrNoProof) {
		untrusted("envelope", "document has no proof envelope")

		return false, nil
	}

	if err != nil {
		return false, err
	}

	proof, err := strategy.Extract(wrapped)
	if err != nil {
		return false, err
	}

	salts, err := salt.Decode(proof.Salts)
	if err != nil {
		logutil.LogError(logger, "verify", "salts", err.Error(), logutil.CreateKeyValueString("shape", strategy.Shape()))

		return false, err
	}

	data := strategy.Strip(wrapped)

	paths, err := leafPaths(data)
	if err != nil {
		untrusted("flatten", err.Error())

		return false, nil
	}

	if len(paths) != len(salts) {
		untrusted("salts", "visible leaves and salts differ in number",
			logutil.CreateKeyValueString("leaves", len(paths)),
			logutil.CreateKeyValueString("salts", len(salts)))

		return false, nil
	}

	target, err := strategy.Digest(data, salts, proof.Obfuscated)
	if errors.Is(err, digest.ErrSaltNotFound) {
		untrusted("digest", "visible leaf without salt")

		return false, nil
	}

	if err != nil {
		untrusted("digest", err.Error())

		return false, nil
	}

	if target != proof.TargetHash {
		untrusted("digest", "target hash mismatch")

		return false, nil
	}

	if !merkle.CheckProofHex(proof.Proofs, proof.MerkleRoot, target) {
		untrusted("merkle", "inclusion proof does not match merkle root")

		return false, nil
	}

	return true, nil
}

func leafPaths(data map[string]interface{}) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}

	return flatten.Paths(data, "", flatten.WithEmptyContainers(true))
}

func untrusted(action, msg string, data ...string) {
	logutil.LogDebug(logger, "verify", action, msg, data...)
}
