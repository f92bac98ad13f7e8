/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs2023

import (
	"github.com/trustbloc/bbs2023-go/dataintegrity/sd"
)

// MessageEncoder turns a non-mandatory N-Quads statement into a BBS message.
type MessageEncoder interface {
	Encode(statement string) []byte
}

// UTF8MessageEncoder encodes statements as their UTF-8 bytes.
type UTF8MessageEncoder struct{}

// Encode implements MessageEncoder.
func (UTF8MessageEncoder) Encode(statement string) []byte {
	return []byte(statement)
}

// OffsetMessageEncoder adds Offset to every byte of the UTF-8 encoding. It
// produces invalid encodings for negative test vectors.
type OffsetMessageEncoder struct {
	Offset byte
}

// Encode implements MessageEncoder.
func (e OffsetMessageEncoder) Encode(statement string) []byte {
	out := []byte(statement)
	for i := range out {
		out[i] += e.Offset
	}

	return out
}

// LabelMapFactoryCreator builds the blank node label map factory from the HMAC of a proof.
type LabelMapFactoryCreator func(h *sd.HMAC) sd.LabelMapFactory

// DefaultLabelMapFactory relabels blank nodes by the rank of their HMAC digests.
func DefaultLabelMapFactory(h *sd.HMAC) sd.LabelMapFactory {
	return sd.CreateShuffledIDLabelMapFunction(h)
}

func encodeMessages(encoder MessageEncoder, statements []string) [][]byte {
	out := make([][]byte, 0, len(statements))
	for _, s := range statements {
		out = append(out, encoder.Encode(s))
	}

	return out
}
