/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package merkle

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/cryptoutil"
)

func hashes(n int) [][]byte {
	out := make([][]byte, 0, n)

	for i := 0; i < n; i++ {
		out = append(out, cryptoutil.Keccak256([]byte(fmt.Sprintf("doc-%d", i))))
	}

	return out
}

func TestNewTree(t *testing.T) {
	t.Run("empty tree", func(t *testing.T) {
		tree := NewTree(nil)
		require.Nil(t, tree.Root())
		require.Empty(t, tree.RootHex())
		require.Empty(t, tree.Leaves())

		_, err := tree.Proof(hashes(1)[0])
		require.ErrorIs(t, err, ErrElementNotFound)
	})

	t.Run("single leaf", func(t *testing.T) {
		leaf := hashes(1)[0]
		tree := NewTree([][]byte{leaf})
		require.Equal(t, leaf, tree.Root())

		proof, err := tree.Proof(leaf)
		require.NoError(t, err)
		require.NotNil(t, proof)
		require.Empty(t, proof)
		require.True(t, CheckProof(proof, tree.Root(), leaf))
	})

	t.Run("two leaves", func(t *testing.T) {
		h := hashes(2)
		tree := NewTree(h)
		require.Equal(t, Combine(h[0], h[1]), tree.Root())

		proof, err := tree.Proof(h[0])
		require.NoError(t, err)
		require.Equal(t, [][]byte{h[1]}, proof)
	})

	t.Run("odd element is carried up", func(t *testing.T) {
		h := NewTree(hashes(3)).Leaves()
		tree := NewTree(h)
		require.Equal(t, Combine(Combine(h[0], h[1]), h[2]), tree.Root())

		proof, err := tree.Proof(h[2])
		require.NoError(t, err)
		require.Equal(t, [][]byte{Combine(h[0], h[1])}, proof)
	})

	t.Run("non hash input is hashed", func(t *testing.T) {
		tree := NewTree([][]byte{[]byte("hello")})
		require.Equal(t, cryptoutil.Keccak256([]byte("hello")), tree.Root())

		proof, err := tree.Proof([]byte("hello"))
		require.NoError(t, err)
		require.Empty(t, proof)
	})

	t.Run("order independent and de-duplicated", func(t *testing.T) {
		h := hashes(5)
		reversed := [][]byte{h[4], h[3], h[2], h[1], h[0], h[2]}

		require.Equal(t, NewTree(h).Root(), NewTree(reversed).Root())
		require.Len(t, NewTree(reversed).Leaves(), 5)
	})

	t.Run("leaves are sorted", func(t *testing.T) {
		leaves := NewTree(hashes(6)).Leaves()

		for i := 1; i < len(leaves); i++ {
			require.Equal(t, -1, bytes.Compare(leaves[i-1], leaves[i]))
		}
	})
}

func TestProof(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8, 13} {
		n := n
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			h := hashes(n)
			tree := NewTree(h)
			root := tree.Root()

			for _, leaf := range h {
				proof, err := tree.Proof(leaf)
				require.NoError(t, err)
				require.True(t, CheckProof(proof, root, leaf))

				hexProof, err := tree.ProofHex(hex.EncodeToString(leaf))
				require.NoError(t, err)
				require.True(t, CheckProofHex(hexProof, tree.RootHex(), hex.EncodeToString(leaf)))
			}
		})
	}

	t.Run("wrong element fails", func(t *testing.T) {
		h := hashes(4)
		tree := NewTree(h)

		proof, err := tree.Proof(h[0])
		require.NoError(t, err)
		require.False(t, CheckProof(proof, tree.Root(), cryptoutil.Keccak256([]byte("other"))))
		require.False(t, CheckProof(proof, nil, h[0]))
	})

	t.Run("error - absent element", func(t *testing.T) {
		tree := NewTree(hashes(3))

		_, err := tree.Proof([]byte("absent"))
		require.ErrorIs(t, err, ErrElementNotFound)

		_, err = tree.ProofHex("zz")
		require.Error(t, err)
	})
}

func TestCheckProofHex(t *testing.T) {
	h := hashes(2)
	tree := NewTree(h)
	leaf := hex.EncodeToString(h[0])

	proof, err := tree.ProofHex(leaf)
	require.NoError(t, err)
	require.True(t, CheckProofHex(proof, "0x"+tree.RootHex(), leaf))

	require.False(t, CheckProofHex(proof, "not hex", leaf))
	require.False(t, CheckProofHex(proof, tree.RootHex(), "abcd"))
	require.False(t, CheckProofHex([]string{"xyz"}, tree.RootHex(), leaf))
}

func TestNewTreeFromHex(t *testing.T) {
	h := hashes(3)

	tree, err := NewTreeFromHex([]string{hex.EncodeToString(h[0]), hex.EncodeToString(h[1]), hex.EncodeToString(h[2])})
	require.NoError(t, err)
	require.Equal(t, NewTree(h).Root(), tree.Root())

	_, err = NewTreeFromHex([]string{"abc"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "element 0")
}

func TestCombine(t *testing.T) {
	h := hashes(2)
	require.Equal(t, Combine(h[0], h[1]), Combine(h[1], h[0]))

	lo, hi := h[0], h[1]
	if bytes.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}

	require.Equal(t, cryptoutil.Keccak256(append(append([]byte{}, lo...), hi...)), Combine(h[0], h[1]))
}
