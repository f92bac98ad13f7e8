/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pubkey

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/multiformats/go-multibase"
)

const (
	// BLS12381G2Type is the key type of a BLS12-381 G2 public key.
	BLS12381G2Type = "BLS12381G2"

	// BLS12381G2KeySize is the size of a compressed BLS12-381 G2 public key.
	BLS12381G2KeySize = 96
)

// multicodec header of bls12_381-g2-pub.
var bls12381G2Codec = []byte{0xeb, 0x01}

// ErrInvalidMultikey is returned when a Multikey value cannot be decoded into a supported key.
var ErrInvalidMultikey = errors.New("invalid multikey")

// BytesKey contains bytes of public key.
type BytesKey struct {
	Bytes []byte
}

// PublicKey contains a result of public key resolution.
type PublicKey struct {
	Type string

	BytesKey *BytesKey
}

// NewBLS12381G2 wraps raw BLS12-381 G2 public key bytes.
func NewBLS12381G2(key []byte) (*PublicKey, error) {
	if len(key) != BLS12381G2KeySize {
		return nil, fmt.Errorf("%w: BLS12-381 G2 key must be %d bytes, got %d",
			ErrInvalidMultikey, BLS12381G2KeySize, len(key))
	}

	return &PublicKey{Type: BLS12381G2Type, BytesKey: &BytesKey{Bytes: bytes.Clone(key)}}, nil
}

// FromMultikey decodes a publicKeyMultibase value of a Multikey verification method.
// Only base58btc encoded BLS12-381 G2 keys are supported.
func FromMultikey(publicKeyMultibase string) (*PublicKey, error) {
	enc, data, err := multibase.Decode(publicKeyMultibase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMultikey, err)
	}

	if enc != multibase.Base58BTC {
		return nil, fmt.Errorf("%w: expected base58btc encoding", ErrInvalidMultikey)
	}

	if !bytes.HasPrefix(data, bls12381G2Codec) {
		return nil, fmt.Errorf("%w: expected bls12_381-g2-pub multicodec header", ErrInvalidMultikey)
	}

	return NewBLS12381G2(data[len(bls12381G2Codec):])
}

// Multikey encodes the key as a publicKeyMultibase value.
func (k *PublicKey) Multikey() (string, error) {
	if k.Type != BLS12381G2Type || k.BytesKey == nil {
		return "", fmt.Errorf("%w: unsupported key type %q", ErrInvalidMultikey, k.Type)
	}

	return multibase.Encode(multibase.Base58BTC, append(bytes.Clone(bls12381G2Codec), k.BytesKey.Bytes...))
}
