// Copyright 2025 Certen Protocol
//
// Merkle aggregation: pure functions that concatenate-then-hash pairs of
// timestamps and roll a list of them into a mountain-range-shaped tip. This
// is consensus-critical — two independent implementations must produce
// byte-identical output from the same inputs, so the algorithm below must
// never change.

package merkle

import (
	"github.com/certen/tsengine/pkg/op"
	"github.com/certen/tsengine/pkg/timestamp"
	"github.com/certen/tsengine/pkg/tserrors"
)

// CatThenUnaryOp concatenates left.Msg() and right.Msg(), then applies
// unary() to the result. It creates (or reuses) an Append child on left and
// a Prepend child on right; because both children land on the same message
// (left.Msg() || right.Msg()), left's child is aliased to right's so both
// sides share the same downstream subtree. Returns the node whose message is
// unary()(left.Msg() || right.Msg()).
//
// Go's static typing means, unlike the source, left and right must already
// be *timestamp.Timestamp — see CatSHA256Bytes for the "lift raw bytes"
// convenience.
func CatThenUnaryOp(unary func() op.Op, left, right *timestamp.Timestamp) (*timestamp.Timestamp, error) {
	left.Ops().Add(op.Append(right.Msg()))
	rightPrepend := right.Ops().Add(op.Prepend(left.Msg()))

	// left's Append child and rightPrepend both hold
	// left.Msg() || right.Msg(); rebind left's child to the shared one so
	// both paths hang off the same subtree.
	if err := left.Ops().Set(op.Append(right.Msg()), rightPrepend); err != nil {
		return nil, err
	}

	return rightPrepend.Ops().Add(unary()), nil
}

// CatSHA256 concatenates left and right, then applies SHA-256.
func CatSHA256(left, right *timestamp.Timestamp) (*timestamp.Timestamp, error) {
	return CatThenUnaryOp(op.SHA256, left, right)
}

// CatSHA256Bytes is CatSHA256 lifting raw byte messages to leaf timestamps
// first, for callers building a tree from scratch rather than merging
// existing proofs.
func CatSHA256Bytes(left, right []byte) (*timestamp.Timestamp, error) {
	return CatSHA256(timestamp.New(left), timestamp.New(right))
}

// CatSHA256d is CatSHA256 followed by another SHA-256 over its result
// (double-SHA256, as used by Bitcoin-oriented commitments).
func CatSHA256d(left, right *timestamp.Timestamp) (*timestamp.Timestamp, error) {
	sha256Stamp, err := CatSHA256(left, right)
	if err != nil {
		return nil, err
	}
	return sha256Stamp.Ops().Add(op.SHA256()), nil
}

// MakeMerkleTree builds a mountain-range tree over stamps in place, using
// binop to timestamp each pair, and returns the tip. An odd element at any
// level is carried up unchanged (not self-hashed) rather than paired with
// itself — this is the detail that makes the shape a mountain range rather
// than a padded binary tree, and it is exactly what's consensus-binding:
// this algorithm must never change.
func MakeMerkleTree(stamps []*timestamp.Timestamp, binop func(l, r *timestamp.Timestamp) (*timestamp.Timestamp, error)) (*timestamp.Timestamp, error) {
	if len(stamps) == 0 {
		return nil, tserrors.ErrEmptyMerkleInput
	}
	if binop == nil {
		binop = CatSHA256
	}

	level := stamps
	for {
		var prev *timestamp.Timestamp
		next := make([]*timestamp.Timestamp, 0, (len(level)+1)/2)

		for _, stamp := range level {
			if prev != nil {
				combined, err := binop(prev, stamp)
				if err != nil {
					return nil, err
				}
				next = append(next, combined)
				prev = nil
			} else {
				prev = stamp
			}
		}

		if len(next) == 0 {
			// Singleton case: the input had exactly one element (a level
			// reduced down to one is returned at the bottom of the loop).
			return prev, nil
		}

		if prev != nil {
			// Odd count: carry the leftover element up unchanged.
			next = append(next, prev)
		}

		level = next
		if len(level) == 1 {
			return level[0], nil
		}
	}
}
