// Copyright 2025 Certen Protocol
//
// Operation map: op -> child timestamp, with a factory that lazily
// materializes a child by applying the operation to the parent's message.
//
// The original source backs this with a dict subclass holding a closure
// over the parent timestamp's constructor. In Go, OpSet instead borrows the
// parent's msg directly as a plain byte slice — no stored closure, no
// captured parent reference to tangle lifetimes (see the factory-backed
// mapping design note).

package timestamp

import (
	"bytes"
	"sort"

	"github.com/certen/tsengine/pkg/op"
	"github.com/certen/tsengine/pkg/tserrors"
)

// OpSet maps distinct operations, at a single node, to their child
// timestamps.
type OpSet struct {
	parentMsg []byte
	children  map[op.Op]*Timestamp
}

func newOpSet(parentMsg []byte) *OpSet {
	return &OpSet{parentMsg: parentMsg, children: make(map[op.Op]*Timestamp)}
}

// Len returns the number of distinct operations recorded.
func (s *OpSet) Len() int { return len(s.children) }

// Get returns the child for o, if present.
func (s *OpSet) Get(o op.Op) (*Timestamp, bool) {
	t, ok := s.children[o]
	return t, ok
}

// Add returns the existing child for o if present; otherwise it builds a
// fresh child with msg = o.Apply(parent.msg), inserts it, and returns it.
// Never fails under normal use.
func (s *OpSet) Add(o op.Op) *Timestamp {
	if t, ok := s.children[o]; ok {
		return t
	}
	t := New(o.Apply(s.parentMsg))
	s.children[o] = t
	return t
}

// Set inserts child under o. A fresh insert is accepted unconditionally
// (trusting the caller — every internal call site already constructs
// children whose msg matches o(parent.msg)). A replacing insert is only
// accepted if the existing child's msg agrees with the new one's; otherwise
// it fails with ErrMessageMismatch, matching the source's OpSet.__setitem__.
//
// A zero-value Op is rejected outright: its tag 0x00 collides with the wire
// grammar's attestation-kind marker, so it can never have come from a real
// decode and indicates a caller bug.
func (s *OpSet) Set(o op.Op, child *Timestamp) error {
	if o.IsZero() {
		return &tserrors.UnknownTagError{Tag: o.Tag()}
	}
	existing, ok := s.children[o]
	if !ok {
		s.children[o] = child
		return nil
	}
	if !bytes.Equal(existing.msg, child.msg) {
		return &tserrors.MessageMismatchError{Op: opLabel(o), Existing: existing.msg, Got: child.msg}
	}
	s.children[o] = child
	return nil
}

type opChild struct {
	op    op.Op
	child *Timestamp
}

// sorted returns (op, child) pairs ordered by op.Less, the canonical order
// used for serialization.
func (s *OpSet) sorted() []opChild {
	pairs := make([]opChild, 0, len(s.children))
	for o, c := range s.children {
		pairs = append(pairs, opChild{op: o, child: c})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].op.Less(pairs[j].op) })
	return pairs
}

// All ranges over (op, child) pairs in unspecified (map iteration) order.
func (s *OpSet) All(yield func(op.Op, *Timestamp) bool) {
	for o, c := range s.children {
		if !yield(o, c) {
			return
		}
	}
}

func opLabel(o op.Op) string {
	switch o.Tag() {
	case op.TagSHA256:
		return "SHA256"
	case op.TagSHA1:
		return "SHA1"
	case op.TagRIPEMD160:
		return "RIPEMD160"
	case op.TagKeccak256:
		return "Keccak256"
	case op.TagAppend:
		return "Append"
	case op.TagPrepend:
		return "Prepend"
	case op.TagReverse:
		return "Reverse"
	case op.TagHexlify:
		return "Hexlify"
	default:
		return "Op"
	}
}
