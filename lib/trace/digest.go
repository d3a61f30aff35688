// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"encoding/hex"
	"errors"
	"io"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of one direction's byte stream.
type Hash [32]byte

// String returns the lowercase hex encoding.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Domain keys keep an input digest from ever equalling an output digest
// of the same bytes. Changing them invalidates recorded golden digests.
var (
	inputDomainKey = [32]byte{
		'u', 'a', 'r', 't', 'b', 'r', 'i', 'd', 'g', 'e', '.', 't', 'r', 'a', 'c', 'e',
		'.', 'i', 'n', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	outputDomainKey = [32]byte{
		'u', 'a', 'r', 't', 'b', 'r', 'i', 'd', 'g', 'e', '.', 't', 'r', 'a', 'c', 'e',
		'.', 'o', 'u', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// Digest summarizes a trace by the bytes that crossed it in each
// direction. Sequence numbers and interleaving are not part of the
// digest, so two runs of the same firmware with the same scripted input
// produce the same Output hash even when the host delivered the input
// on different cycles.
type Digest struct {
	Input       Hash
	InputCount  uint64
	Output      Hash
	OutputCount uint64
}

// Summarize reads every remaining event from r and digests it.
func Summarize(r *Reader) (Digest, error) {
	input := newKeyedHasher(inputDomainKey)
	output := newKeyedHasher(outputDomainKey)

	var digest Digest
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Digest{}, err
		}
		switch event.Direction {
		case Input:
			input.Write([]byte{event.Value})
			digest.InputCount++
		case Output:
			output.Write([]byte{event.Value})
			digest.OutputCount++
		}
	}
	copy(digest.Input[:], input.Sum(nil))
	copy(digest.Output[:], output.Sum(nil))
	return digest, nil
}

func newKeyedHasher(key [32]byte) *blake3.Hasher {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("trace: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}
