// Copyright 2025 Certen Protocol

package timestamp

import (
	"testing"

	"github.com/certen/tsengine/pkg/op"
)

func TestOpSet_AddInsertsAndMemoizes(t *testing.T) {
	s := newOpSet([]byte{0x01, 0x02})
	first := s.Add(op.SHA256())
	second := s.Add(op.SHA256())
	if first != second {
		t.Error("Add should return the same child on repeated calls for the same op")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestOpSet_SetRejectsZeroOp(t *testing.T) {
	s := newOpSet([]byte{0x01})
	var zero op.Op
	if err := s.Set(zero, New([]byte{0x01})); err == nil {
		t.Fatal("expected an error setting a zero-value op, which collides with the attestation-kind marker byte")
	}
}

func TestOpSet_SetAcceptsAgreeingReplace(t *testing.T) {
	s := newOpSet([]byte{0x01})
	o := op.SHA256()
	child := New(o.Apply([]byte{0x01}))
	if err := s.Set(o, child); err != nil {
		t.Fatalf("Set (fresh insert): %v", err)
	}
	if err := s.Set(o, child); err != nil {
		t.Fatalf("Set (agreeing replace): %v", err)
	}
}

func TestOpSet_SetRejectsDisagreeingReplace(t *testing.T) {
	s := newOpSet([]byte{0x01})
	o := op.SHA256()
	if err := s.Set(o, New(o.Apply([]byte{0x01}))); err != nil {
		t.Fatalf("Set (fresh insert): %v", err)
	}
	if err := s.Set(o, New([]byte{0xff, 0xff})); err == nil {
		t.Fatal("expected an error replacing a child whose msg disagrees with the existing one")
	}
}

func TestOpSet_Get(t *testing.T) {
	s := newOpSet([]byte{0x01})
	o := op.SHA256()
	if _, ok := s.Get(o); ok {
		t.Fatal("Get on an empty set should report not-found")
	}
	want := s.Add(o)
	got, ok := s.Get(o)
	if !ok || got != want {
		t.Errorf("Get = (%+v, %v), want (%+v, true)", got, ok, want)
	}
}
