/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

// Keys of the built-in envelope schemas. They match envelope.Shape.String().
const (
	LegacyKey     = "legacy"
	CurrentKey    = "current"
	CredentialKey = "credential"
)

const definitions = `
  "definitions": {
    "hash": {
      "type": "string",
      "pattern": "^[0-9a-f]{64}$"
    },
    "hashes": {
      "type": "array",
      "items": {"$ref": "#/definitions/hash"}
    }
  }`

const merkleProof = `
    "proof": {
      "type": "object",
      "required": ["type", "targetHash", "merkleRoot", "proofs", "salts", "privacy"],
      "properties": {
        "type": {"const": "OpenAttestationMerkleProofSignature2018"},
        "proofPurpose": {"const": "assertionMethod"},
        "targetHash": {"$ref": "#/definitions/hash"},
        "merkleRoot": {"$ref": "#/definitions/hash"},
        "proofs": {"$ref": "#/definitions/hashes"},
        "salts": {"type": "string"},
        "privacy": {
          "type": "object",
          "required": ["obfuscated"],
          "properties": {
            "obfuscated": {"$ref": "#/definitions/hashes"}
          }
        },
        "key": {"type": "string"},
        "signature": {"type": "string"}
      }
    }`

const schemaLegacy = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["signature", "privacy"],
  "properties": {
    "signature": {
      "type": "object",
      "required": ["type", "targetHash", "merkleRoot", "proof", "salts"],
      "properties": {
        "type": {"const": "SHA3MerkleProof"},
        "targetHash": {"$ref": "#/definitions/hash"},
        "merkleRoot": {"$ref": "#/definitions/hash"},
        "proof": {"$ref": "#/definitions/hashes"},
        "salts": {"type": "string"}
      }
    },
    "privacy": {
      "type": "object",
      "required": ["obfuscatedData"],
      "properties": {
        "obfuscatedData": {"$ref": "#/definitions/hashes"}
      }
    },
    "proof": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "proofPurpose", "verificationMethod", "signature"],
        "properties": {
          "type": {"const": "OpenAttestationSignature2018"},
          "created": {"type": "string"},
          "proofPurpose": {"type": "string"},
          "verificationMethod": {"type": "string"},
          "signature": {"type": "string"}
        }
      }
    }
  },` + definitions + `
}`

const schemaCurrent = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["proof"],
  "properties": {` + merkleProof + `
  },` + definitions + `
}`

const schemaCredential = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["@context", "proof"],
  "properties": {
    "@context": {
      "type": "array",
      "minItems": 1
    },` + merkleProof + `
  },` + definitions + `
}`
