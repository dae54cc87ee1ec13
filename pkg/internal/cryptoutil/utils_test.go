/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptoutil

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestKeccak256(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		require.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Keccak256Hex(nil))
	})

	t.Run("concatenation", func(t *testing.T) {
		require.Equal(t, Keccak256([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
		require.Len(t, Keccak256([]byte("abc")), HashSize)
	})

	t.Run("hex form matches the ethereum hash type", func(t *testing.T) {
		require.Equal(t, crypto.Keccak256Hash([]byte("abc")).Hex(), "0x"+Keccak256Hex([]byte("abc")))
	})
}

func TestDecodeHash(t *testing.T) {
	h := Keccak256Hex([]byte("test"))

	t.Run("success", func(t *testing.T) {
		b, err := DecodeHash(h)
		require.NoError(t, err)
		require.Len(t, b, HashSize)

		b2, err := DecodeHash("0x" + h)
		require.NoError(t, err)
		require.Equal(t, b, b2)
	})

	t.Run("error - not hex", func(t *testing.T) {
		_, err := DecodeHash("zz")
		require.ErrorIs(t, err, errInvalidHash)
	})

	t.Run("error - wrong length", func(t *testing.T) {
		_, err := DecodeHash("abcd")
		require.ErrorIs(t, err, errInvalidHash)
		require.Contains(t, err.Error(), "expected 32 bytes, got 2")
	})
}
