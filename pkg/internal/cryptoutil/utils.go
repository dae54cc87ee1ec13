/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptoutil

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// HashSize is the size in bytes of a Keccak-256 digest.
const HashSize = 32

// errInvalidHash is used when a hex string does not decode to a Keccak-256 digest.
var errInvalidHash = errors.New("invalid hash")

// Keccak256 returns the legacy Keccak-256 digest of the concatenated inputs, the same hash the
// signer applies to personal messages.
func Keccak256(data ...[]byte) []byte {
	return crypto.Keccak256(data...)
}

// Keccak256Hex returns the lower-case hex encoded Keccak-256 digest of data.
func Keccak256Hex(data []byte) string {
	return hex.EncodeToString(Keccak256(data))
}

// DecodeHash decodes a 64 character hex digest, with or without a 0x prefix.
func DecodeHash(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidHash, err)
	}

	if len(b) != HashSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", errInvalidHash, HashSize, len(b))
	}

	return b, nil
}
