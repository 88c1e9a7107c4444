// Copyright 2025 Certen Protocol

package op

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/certen/tsengine/pkg/serialize"
)

func roundTrip(t *testing.T, o Op) Op {
	t.Helper()
	var buf bytes.Buffer
	wctx := serialize.NewWriter(&buf)
	if err := o.Serialize(wctx); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	rctx := serialize.NewReader(&buf)
	tagBuf, err := rctx.ReadBytes(1)
	if err != nil {
		t.Fatalf("read tag: %v", err)
	}
	got, err := DeserializeFromTag(rctx, tagBuf[0])
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	return got
}

func TestSHA256_ApplyAndTag(t *testing.T) {
	o := SHA256()
	if o.Tag() != TagSHA256 {
		t.Errorf("tag = %x, want %x", o.Tag(), TagSHA256)
	}
	want := sha256.Sum256([]byte{0x00})
	if !bytes.Equal(o.Apply([]byte{0x00}), want[:]) {
		t.Errorf("Apply mismatch")
	}
}

func TestAppendPrepend_RoundTrip(t *testing.T) {
	a := Append([]byte("tail"))
	got := roundTrip(t, a)
	if got != a {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, a)
	}

	p := Prepend([]byte("head"))
	got = roundTrip(t, p)
	if got != p {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestAppendApply(t *testing.T) {
	a := Append([]byte{0x02})
	if got := a.Apply([]byte{0x01}); !bytes.Equal(got, []byte{0x01, 0x02}) {
		t.Errorf("Append.Apply = %x, want 0x0102", got)
	}
	p := Prepend([]byte{0x01})
	if got := p.Apply([]byte{0x02}); !bytes.Equal(got, []byte{0x01, 0x02}) {
		t.Errorf("Prepend.Apply = %x, want 0x0102", got)
	}
}

func TestOp_Comparable(t *testing.T) {
	m := map[Op]int{}
	m[SHA256()] = 1
	m[Append([]byte("x"))] = 2
	if m[SHA256()] != 1 {
		t.Error("Op isn't usable as a stable map key")
	}
}

func TestOp_Less_TotalOrder(t *testing.T) {
	a := Append([]byte("a"))
	b := Append([]byte("b"))
	if !a.Less(b) || b.Less(a) {
		t.Error("Append(a) should sort before Append(b)")
	}
	if !SHA256().Less(Keccak256()) {
		t.Error("tag ordering should place SHA256 (0x08) before Keccak256 (0x67)")
	}
}

func TestDeserializeFromTag_UnknownTag(t *testing.T) {
	var buf bytes.Buffer
	ctx := serialize.NewReader(&buf)
	if _, err := DeserializeFromTag(ctx, 0x55); err == nil {
		t.Fatal("expected an unknown-tag error")
	}
}
