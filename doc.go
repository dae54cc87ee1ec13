/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package wrapdoc issues tamper evident documents whose fields can be selectively disclosed.
//
// Packages for end developer usage
//
// pkg/doc/wrap: Salts every leaf of one or more documents, computes their target hashes and
// batches them under a single merkle root.
//
// pkg/doc/verify: Checks that a wrapped document still matches its target hash and merkle proof.
//
// pkg/doc/obfuscate: Redacts fields of a wrapped document while keeping it verifiable.
//
// pkg/doc/signer: Signs the merkle root and verifies the signatures of wrapped documents.
//
// Basic workflow
//
//	1) Wrap the raw documents with wrap.Wrap or wrap.WrapMany, choosing a shape.
//	2) Optionally sign the merkle root with signer.Sign.
//	3) Hand the documents to holders, who redact fields with obfuscate.Obfuscate.
//	4) Relying parties call verify.Verify and signer.VerifySignatures.
package wrapdoc
