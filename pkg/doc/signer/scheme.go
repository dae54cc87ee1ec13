/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Secp256k1VerificationKey2018 signs the merkle root as an Ethereum personal message.
const Secp256k1VerificationKey2018 = "Secp256k1VerificationKey2018"

const (
	signatureLength = 65
	recoveryOffset  = 27
)

var addressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)

// Scheme signs and verifies merkle roots for one algorithm.
type Scheme interface {
	// Sign signs message with key and returns the key identifier and the encoded signature.
	Sign(ctx context.Context, message []byte, key interface{}) (keyID, signature string, err error)
	// Verify reports whether signature over message was produced by the key named in keyID.
	Verify(message []byte, keyID, signature string) (bool, error)
}

// KeyPair is an in-process secp256k1 key. Public identifies the key, e.g. did:ethr:0xABC...#controller,
// and must contain the address derived from Private.
type KeyPair struct {
	Public  string
	Private string
}

// Signer is an external signing capability such as a wallet or HSM. Sign applies the personal
// message prefix itself.
type Signer interface {
	Sign(ctx context.Context, message []byte) ([]byte, error)
	Address(ctx context.Context) (string, error)
}

// KeyID returns the key identifier used for an address.
func KeyID(address string) string {
	return "did:ethr:" + address + "#controller"
}

type secp256k1Scheme struct{}

func (s secp256k1Scheme) Sign(ctx context.Context, message []byte, key interface{}) (string, string, error) {
	switch k := key.(type) {
	case KeyPair:
		return s.signWithKey(message, k)
	case *KeyPair:
		if k == nil {
			return "", "", errors.New("nil key pair")
		}

		return s.signWithKey(message, *k)
	case Signer:
		return s.signWithSigner(ctx, message, k)
	default:
		return "", "", fmt.Errorf("unsupported key type %T", key)
	}
}

func (secp256k1Scheme) signWithKey(message []byte, key KeyPair) (string, string, error) {
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(key.Private, "0x"))
	if err != nil {
		return "", "", fmt.Errorf("parse private key: %w", err)
	}

	address := crypto.PubkeyToAddress(priv.PublicKey).Hex()

	if !strings.Contains(strings.ToLower(key.Public), strings.ToLower(address)) {
		return "", "", fmt.Errorf("%w: '%s' does not name address %s", ErrKeyMismatch, key.Public, address)
	}

	sig, err := personalSign(message, priv)
	if err != nil {
		return "", "", err
	}

	return key.Public, hexutil.Encode(sig), nil
}

func (secp256k1Scheme) signWithSigner(ctx context.Context, message []byte, s Signer) (string, string, error) {
	address, err := s.Address(ctx)
	if err != nil {
		return "", "", fmt.Errorf("get signer address: %w", err)
	}

	sig, err := s.Sign(ctx, message)
	if err != nil {
		return "", "", fmt.Errorf("sign merkle root: %w", err)
	}

	return KeyID(address), hexutil.Encode(sig), nil
}

func (secp256k1Scheme) Verify(message []byte, keyID, signature string) (bool, error) {
	expected := addressPattern.FindString(keyID)
	if expected == "" || !common.IsHexAddress(expected) {
		return false, nil
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != signatureLength {
		return false, nil
	}

	if sig[64] >= recoveryOffset {
		sig[64] -= recoveryOffset
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return false, nil
	}

	return crypto.PubkeyToAddress(*pub) == common.HexToAddress(expected), nil
}

func personalSign(message []byte, priv *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), priv)
	if err != nil {
		return nil, fmt.Errorf("sign merkle root: %w", err)
	}

	sig[64] += recoveryOffset

	return sig, nil
}
