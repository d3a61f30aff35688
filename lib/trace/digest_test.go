// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bytes"
	"testing"
)

func digestOf(t *testing.T, record func(*Writer)) Digest {
	t.Helper()
	var buffer bytes.Buffer
	writer, err := NewWriter(&buffer, CompressionZstd, discardLogger())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	record(writer)
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reader, err := NewReader(&buffer)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()
	digest, err := Summarize(reader)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	return digest
}

func TestDigestIgnoresInterleaving(t *testing.T) {
	lockstep := digestOf(t, func(w *Writer) {
		for _, value := range []byte("hello") {
			w.RecordInput(value)
			w.RecordOutput(value)
		}
	})
	batched := digestOf(t, func(w *Writer) {
		for _, value := range []byte("hello") {
			w.RecordInput(value)
		}
		for _, value := range []byte("hello") {
			w.RecordOutput(value)
		}
	})

	if lockstep != batched {
		t.Errorf("digests differ:\n  lockstep %+v\n  batched  %+v", lockstep, batched)
	}
	if lockstep.InputCount != 5 || lockstep.OutputCount != 5 {
		t.Errorf("counts = %d in, %d out; want 5, 5", lockstep.InputCount, lockstep.OutputCount)
	}
}

func TestDigestSeparatesDirections(t *testing.T) {
	digest := digestOf(t, func(w *Writer) {
		w.RecordInput('x')
		w.RecordOutput('x')
	})
	if digest.Input == digest.Output {
		t.Error("input and output digests of the same byte are equal")
	}
}

func TestDigestDetectsChangedOutput(t *testing.T) {
	first := digestOf(t, func(w *Writer) { w.RecordOutput('a') })
	second := digestOf(t, func(w *Writer) { w.RecordOutput('b') })
	if first.Output == second.Output {
		t.Error("different output bytes produced the same digest")
	}
	if first.Input != second.Input {
		t.Error("empty input streams produced different digests")
	}
}

func TestHashString(t *testing.T) {
	var hash Hash
	hash[0] = 0xab
	text := hash.String()
	if len(text) != 64 || text[:2] != "ab" {
		t.Errorf("String() = %q", text)
	}
}
