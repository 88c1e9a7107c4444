// Copyright 2025 Certen Protocol
//
// Timestamp: a proof that one or more attestations commit to a message. The
// proof is a tree — each node a message, each edge an operation acting on
// that message — whose leaves are attestations binding a message to
// external time evidence.

package timestamp

import (
	"iter"
	"sort"
	"strings"

	"github.com/certen/tsengine/pkg/attestation"
	"github.com/certen/tsengine/pkg/op"
	"github.com/certen/tsengine/pkg/serialize"
	"github.com/certen/tsengine/pkg/tserrors"
)

// Context is the serialization context a Timestamp reads and writes through.
type Context = serialize.Context

// Timestamp is one node of a proof tree.
type Timestamp struct {
	msg          []byte
	attestations map[attestation.Attestation]struct{}
	ops          *OpSet
}

// New creates a node for msg with an empty attestation set and op map.
func New(msg []byte) *Timestamp {
	m := append([]byte(nil), msg...)
	return &Timestamp{
		msg:          m,
		attestations: make(map[attestation.Attestation]struct{}),
		ops:          newOpSet(m),
	}
}

// Msg returns the node's fixed message.
func (t *Timestamp) Msg() []byte { return t.msg }

// Ops returns the node's operation map.
func (t *Timestamp) Ops() *OpSet { return t.ops }

// AddAttestation records a over this node's message.
func (t *Timestamp) AddAttestation(a attestation.Attestation) {
	t.attestations[a] = struct{}{}
}

// Attestations returns a snapshot of this node's attestations, in their
// canonical (sorted) order.
func (t *Timestamp) Attestations() []attestation.Attestation {
	out := make([]attestation.Attestation, 0, len(t.attestations))
	for a := range t.attestations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Equal reports whether t and other represent the same proof: same msg,
// same attestation set, and recursively equal op maps.
//
// The source's Timestamp.__eq__ compares msg and ops but not attestations —
// two trees differing only in attestations would compare equal yet
// serialize differently, which breaks round-trip soundness. This
// implementation includes attestations at every level, per spec (see
// DESIGN.md's "attestation-inclusive equality" entry).
func (t *Timestamp) Equal(other *Timestamp) bool {
	if t == nil || other == nil {
		return t == other
	}
	if string(t.msg) != string(other.msg) {
		return false
	}
	if len(t.attestations) != len(other.attestations) {
		return false
	}
	for a := range t.attestations {
		if _, ok := other.attestations[a]; !ok {
			return false
		}
	}
	if t.ops.Len() != other.ops.Len() {
		return false
	}
	for o, child := range t.ops.children {
		otherChild, ok := other.ops.children[o]
		if !ok || !child.Equal(otherChild) {
			return false
		}
	}
	return true
}

// Merge adds all operations and attestations from other into t. Fails with
// ErrMessageMismatch if the two nodes aren't for the same message. Merge is
// idempotent and commutative up to set/map equality.
func (t *Timestamp) Merge(other *Timestamp) error {
	if string(t.msg) != string(other.msg) {
		return &tserrors.MessageMismatchError{Op: "merge", Existing: t.msg, Got: other.msg}
	}
	for a := range other.attestations {
		t.attestations[a] = struct{}{}
	}
	for o, otherChild := range other.ops.children {
		ourChild := t.ops.Add(o)
		if err := ourChild.Merge(otherChild); err != nil {
			return err
		}
	}
	return nil
}

// MergeAny merges other into t if other is a *Timestamp, or fails with
// ErrTypeMismatch otherwise. Go's static typing makes a mismatched merge
// unreachable through Merge alone; this exists so TypeMismatch has a real
// call site, mirroring the source's dynamically-typed merge(other).
func (t *Timestamp) MergeAny(other any) error {
	ts, ok := other.(*Timestamp)
	if !ok {
		return tserrors.ErrTypeMismatch
	}
	return t.Merge(ts)
}

// AllAttestations lazily walks the subtree, yielding (msg, attestation)
// pairs. Iteration order is unspecified; callers must treat the result as a
// multiset.
func (t *Timestamp) AllAttestations() iter.Seq2[[]byte, attestation.Attestation] {
	return func(yield func([]byte, attestation.Attestation) bool) {
		var walk func(n *Timestamp) bool
		walk = func(n *Timestamp) bool {
			for a := range n.attestations {
				if !yield(n.msg, a) {
					return false
				}
			}
			for _, c := range n.ops.children {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(t)
	}
}

// StrTree renders the subtree as an indented, human-readable proof dump —
// the Go counterpart of the original source's str_tree, kept for debug
// logging since this engine has no CLI front-end to print proofs.
func (t *Timestamp) StrTree(indent int) string {
	var b strings.Builder
	pad := strings.Repeat(" ", indent)
	for _, a := range t.Attestations() {
		b.WriteString(pad)
		b.WriteString("verify ")
		b.WriteString(opLabelForAttestation(a))
		b.WriteByte('\n')
	}
	pairs := t.ops.sorted()
	switch {
	case len(pairs) > 1:
		for _, p := range pairs {
			b.WriteString(pad)
			b.WriteString(" -> ")
			b.WriteString(opLabel(p.op))
			b.WriteByte('\n')
			b.WriteString(p.child.StrTree(indent + 4))
		}
	case len(pairs) == 1:
		b.WriteString(pad)
		b.WriteString(opLabel(pairs[0].op))
		b.WriteByte('\n')
		b.WriteString(pairs[0].child.StrTree(indent))
	}
	return b.String()
}

func opLabelForAttestation(a attestation.Attestation) string {
	switch v := a.(type) {
	case attestation.Pending:
		return "pending(" + v.URI + ")"
	case attestation.Bitcoin:
		return "bitcoin"
	case attestation.Litecoin:
		return "litecoin"
	case attestation.Ethereum:
		return "ethereum"
	default:
		return "attestation"
	}
}

// Serialize encodes t depth-first per the grammar: 0xff marks "sibling
// follows", 0x00 marks an attestation kind byte, any other byte is an
// operation tag. Attestations and operations are each emitted in their
// canonical (sorted) order so equal trees always serialize identically.
func (t *Timestamp) Serialize(ctx *Context) error {
	atts := t.Attestations()
	ops := t.ops.sorted()
	n, m := len(atts), len(ops)
	if n+m == 0 {
		return tserrors.ErrEmptyTimestamp
	}

	nonTerminalAtts := n
	if m == 0 {
		nonTerminalAtts = n - 1
	}
	for i := 0; i < nonTerminalAtts; i++ {
		if err := ctx.WriteBytes([]byte{0xff, 0x00}); err != nil {
			return err
		}
		if err := atts[i].Serialize(ctx); err != nil {
			return err
		}
	}

	if m == 0 {
		if err := ctx.WriteBytes([]byte{0x00}); err != nil {
			return err
		}
		return atts[n-1].Serialize(ctx)
	}

	for i := 0; i < m-1; i++ {
		if err := ctx.WriteBytes([]byte{0xff}); err != nil {
			return err
		}
		if err := ops[i].op.Serialize(ctx); err != nil {
			return err
		}
		if err := ops[i].child.Serialize(ctx); err != nil {
			return err
		}
	}
	last := ops[m-1]
	if err := last.op.Serialize(ctx); err != nil {
		return err
	}
	return last.child.Serialize(ctx)
}

// Deserialize is the inverse of Serialize. Because the wire format never
// repeats the message a node operates on, the caller must supply it: the
// root's msg for the outermost call, and op(parent.msg) for every recursive
// call the decoder makes on children.
func Deserialize(ctx *Context, initialMsg []byte) (*Timestamp, error) {
	t := New(initialMsg)

	doTagOrAttestation := func(tag byte) error {
		if tag == 0x00 {
			a, err := attestation.Deserialize(ctx)
			if err != nil {
				return err
			}
			t.AddAttestation(a)
			return nil
		}
		o, err := op.DeserializeFromTag(ctx, tag)
		if err != nil {
			return err
		}
		child, err := Deserialize(ctx, o.Apply(initialMsg))
		if err != nil {
			return err
		}
		return t.ops.Set(o, child)
	}

	tagBuf, err := ctx.ReadBytes(1)
	if err != nil {
		return nil, err
	}
	tag := tagBuf[0]
	for tag == 0xff {
		kindBuf, err := ctx.ReadBytes(1)
		if err != nil {
			return nil, err
		}
		if err := doTagOrAttestation(kindBuf[0]); err != nil {
			return nil, err
		}
		tagBuf, err = ctx.ReadBytes(1)
		if err != nil {
			return nil, err
		}
		tag = tagBuf[0]
	}
	if err := doTagOrAttestation(tag); err != nil {
		return nil, err
	}

	return t, nil
}
