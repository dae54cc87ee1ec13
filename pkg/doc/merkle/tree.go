/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package merkle builds order independent binary Merkle trees over document target hashes.
//
// Leaves are sorted and de-duplicated, pairs are combined by hashing the sorted concatenation
// of the two siblings, and an unpaired trailing element is carried to the next layer as is.
// Proofs therefore carry no left/right flags.
package merkle

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-framework-go/component/wrapdoc/pkg/internal/cryptoutil"
)

// ErrElementNotFound is returned by Proof when the element is not a leaf of the tree.
var ErrElementNotFound = errors.New("element not found in merkle tree")

// Tree is an immutable Merkle tree. It is safe for concurrent reads.
type Tree struct {
	layers [][][]byte
}

// NewTree builds a tree over elements. Elements of HashSize bytes are taken as hashes,
// anything else is hashed first.
func NewTree(elements [][]byte) *Tree {
	leaves := make([][]byte, 0, len(elements))

	for _, e := range elements {
		leaves = append(leaves, normalize(e))
	}

	slices.SortFunc(leaves, bytes.Compare)
	leaves = slices.CompactFunc(leaves, bytes.Equal)

	t := &Tree{layers: [][][]byte{leaves}}

	for layer := leaves; len(layer) > 1; {
		next := make([][]byte, 0, (len(layer)+1)/2)

		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])

				continue
			}

			next = append(next, Combine(layer[i], layer[i+1]))
		}

		t.layers = append(t.layers, next)
		layer = next
	}

	return t
}

// NewTreeFromHex builds a tree over hex encoded hashes.
func NewTreeFromHex(hashes []string) (*Tree, error) {
	elements := make([][]byte, 0, len(hashes))

	for i, h := range hashes {
		b, err := cryptoutil.DecodeHash(h)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		elements = append(elements, b)
	}

	return NewTree(elements), nil
}

// Leaves returns the sorted leaf layer.
func (t *Tree) Leaves() [][]byte {
	return cloneAll(t.layers[0])
}

// Root returns the top hash, or nil for an empty tree.
func (t *Tree) Root() []byte {
	top := t.layers[len(t.layers)-1]
	if len(top) == 0 {
		return nil
	}

	return bytes.Clone(top[0])
}

// RootHex returns the hex encoded root, or "" for an empty tree.
func (t *Tree) RootHex() string {
	root := t.Root()
	if root == nil {
		return ""
	}

	return hex.EncodeToString(root)
}

// Proof returns the sibling hashes needed to recompute the root from element.
// A single leaf tree yields an empty, non-nil proof.
func (t *Tree) Proof(element []byte) ([][]byte, error) {
	leaf := normalize(element)

	index, found := slices.BinarySearchFunc(t.layers[0], leaf, bytes.Compare)
	if !found {
		return nil, ErrElementNotFound
	}

	proof := [][]byte{}

	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := index + 1
		if index%2 == 1 {
			sibling = index - 1
		}

		if sibling < len(layer) {
			proof = append(proof, bytes.Clone(layer[sibling]))
		}

		index /= 2
	}

	return proof, nil
}

// ProofHex is Proof over hex encoded hashes.
func (t *Tree) ProofHex(element string) ([]string, error) {
	b, err := cryptoutil.DecodeHash(element)
	if err != nil {
		return nil, err
	}

	proof, err := t.Proof(b)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(proof))

	for _, p := range proof {
		out = append(out, hex.EncodeToString(p))
	}

	return out, nil
}

// CheckProof folds proof onto element and compares the result with root.
func CheckProof(proof [][]byte, root, element []byte) bool {
	if len(root) == 0 {
		return false
	}

	computed := normalize(element)

	for _, p := range proof {
		computed = Combine(computed, p)
	}

	return bytes.Equal(computed, root)
}

// CheckProofHex is CheckProof over hex encoded hashes. Undecodable input never verifies.
func CheckProofHex(proof []string, root, element string) bool {
	r, err := cryptoutil.DecodeHash(root)
	if err != nil {
		return false
	}

	e, err := cryptoutil.DecodeHash(element)
	if err != nil {
		return false
	}

	siblings := make([][]byte, 0, len(proof))

	for _, p := range proof {
		b, err := cryptoutil.DecodeHash(p)
		if err != nil {
			return false
		}

		siblings = append(siblings, b)
	}

	return CheckProof(siblings, r, e)
}

// Combine hashes two siblings independently of their order.
func Combine(a, b []byte) []byte {
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}

	return cryptoutil.Keccak256(a, b)
}

func normalize(element []byte) []byte {
	if len(element) == cryptoutil.HashSize {
		return bytes.Clone(element)
	}

	return cryptoutil.Keccak256(element)
}

func cloneAll(in [][]byte) [][]byte {
	out := make([][]byte, 0, len(in))

	for _, b := range in {
		out = append(out, bytes.Clone(b))
	}

	return out
}
