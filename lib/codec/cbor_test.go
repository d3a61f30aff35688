// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Sequence uint64 `cbor:"1,keyasint"`
	Value    byte   `cbor:"2,keyasint"`
}

func TestMarshalDeterministic(t *testing.T) {
	first, err := Marshal(sample{Sequence: 7, Value: 0x41})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(sample{Sequence: 7, Value: 0x41})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("encodings differ: %x vs %x", first, second)
	}
	// Map of two entries with small integer keys and values.
	if want := []byte{0xa2, 0x01, 0x07, 0x02, 0x18, 0x41}; !bytes.Equal(first, want) {
		t.Errorf("encoding = %x, want %x", first, want)
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for i := range 3 {
		if err := encoder.Encode(sample{Sequence: uint64(i), Value: byte(0xfd + i)}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i := range 3 {
		var got sample
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode %d: %v", i, err)
		}
		if got.Sequence != uint64(i) || got.Value != byte(0xfd+i) {
			t.Errorf("record %d = %+v", i, got)
		}
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var got sample
	if err := Unmarshal([]byte{0xff, 0x00}, &got); err == nil {
		t.Error("Unmarshal accepted invalid CBOR")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(sample{Sequence: 1, Value: 2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnosis, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnosis, "1: 1") || !strings.Contains(diagnosis, "2: 2") {
		t.Errorf("Diagnose = %q", diagnosis)
	}
}
