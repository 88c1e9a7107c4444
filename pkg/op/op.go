// Copyright 2025 Certen Protocol
//
// Operation abstraction: an immutable value naming a deterministic
// bytes-to-bytes function. Two shapes matter structurally — unary crypto
// ops (SHA-256 and friends, no payload) and binary-prepared unary ops
// (Append/Prepend, which carry a fixed byte payload). Op is deliberately a
// comparable struct rather than an interface so it can be used directly as
// a map key (pkg/timestamp's OpSet) and ordered for canonical serialization.

package op

import (
	"crypto/sha1"
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is part of the op registry contract, not a security choice

	"github.com/certen/tsengine/pkg/serialize"
	"github.com/certen/tsengine/pkg/tserrors"
)

// Context is the serialization context ops read and write through.
type Context = serialize.Context

// Tag bytes. The grammar's control tags (0x00 "attestation kind", 0xff
// "sibling follows") are reserved; no op tag may collide with them.
const (
	TagSHA1      byte = 0x02
	TagRIPEMD160 byte = 0x03
	TagSHA256    byte = 0x08
	TagKeccak256 byte = 0x67
	TagAppend    byte = 0xf0
	TagPrepend   byte = 0xf1
	TagReverse   byte = 0xf2
	TagHexlify   byte = 0xf3
)

// Op identifies one operation instance: a tag, plus a payload for the
// binary-prepared kinds (empty for crypto ops).
type Op struct {
	tag     byte
	payload string
}

// SHA256 returns the SHA-256 crypto op.
func SHA256() Op { return Op{tag: TagSHA256} }

// SHA1 returns the SHA-1 crypto op.
func SHA1() Op { return Op{tag: TagSHA1} }

// RIPEMD160 returns the RIPEMD-160 crypto op.
func RIPEMD160() Op { return Op{tag: TagRIPEMD160} }

// Keccak256 returns the Keccak-256 crypto op, backed by go-ethereum's
// implementation.
func Keccak256() Op { return Op{tag: TagKeccak256} }

// Append returns a binary-prepared op that concatenates payload after msg.
func Append(payload []byte) Op { return Op{tag: TagAppend, payload: string(payload)} }

// Prepend returns a binary-prepared op that concatenates payload before msg.
func Prepend(payload []byte) Op { return Op{tag: TagPrepend, payload: string(payload)} }

// Reverse returns an op that reverses msg byte-for-byte.
func Reverse() Op { return Op{tag: TagReverse} }

// Hexlify returns an op that replaces msg with its lowercase hex encoding.
func Hexlify() Op { return Op{tag: TagHexlify} }

// Tag returns the op's one-byte wire tag.
func (o Op) Tag() byte { return o.tag }

// Payload returns the op's payload, if any (empty for crypto/unary ops).
func (o Op) Payload() []byte { return []byte(o.payload) }

// IsZero reports whether o is the zero value (useful for "no op" sentinels).
func (o Op) IsZero() bool { return o.tag == 0 && o.payload == "" }

// Apply runs the operation against msg, returning the transformed bytes.
func (o Op) Apply(msg []byte) []byte {
	switch o.tag {
	case TagSHA256:
		h := sha256.Sum256(msg)
		return h[:]
	case TagSHA1:
		h := sha1.Sum(msg)
		return h[:]
	case TagRIPEMD160:
		h := ripemd160.New()
		h.Write(msg)
		return h.Sum(nil)
	case TagKeccak256:
		return crypto.Keccak256(msg)
	case TagAppend:
		out := make([]byte, 0, len(msg)+len(o.payload))
		out = append(out, msg...)
		out = append(out, o.payload...)
		return out
	case TagPrepend:
		out := make([]byte, 0, len(msg)+len(o.payload))
		out = append(out, o.payload...)
		out = append(out, msg...)
		return out
	case TagReverse:
		out := make([]byte, len(msg))
		for i, b := range msg {
			out[len(msg)-1-i] = b
		}
		return out
	case TagHexlify:
		const hexDigits = "0123456789abcdef"
		out := make([]byte, 0, len(msg)*2)
		for _, b := range msg {
			out = append(out, hexDigits[b>>4], hexDigits[b&0x0f])
		}
		return out
	default:
		// Unreachable for ops constructed through this package's
		// constructors or DeserializeFromTag, both of which only ever
		// produce registered tags.
		panic("op: unknown tag")
	}
}

// Less gives the total order used for canonical serialization: tag first,
// then payload, lexicographically.
func (o Op) Less(other Op) bool {
	if o.tag != other.tag {
		return o.tag < other.tag
	}
	return o.payload < other.payload
}

func hasPayload(tag byte) bool {
	return tag == TagAppend || tag == TagPrepend
}

// Serialize writes the op's tag byte, then its payload (length-prefixed) if
// the op kind carries one.
func (o Op) Serialize(ctx *Context) error {
	if err := ctx.WriteBytes([]byte{o.tag}); err != nil {
		return err
	}
	if hasPayload(o.tag) {
		return ctx.WriteVarBytes([]byte(o.payload))
	}
	return nil
}

// DeserializeFromTag is the inverse of Serialize, given the tag byte already
// read off the wire by the caller (the timestamp codec, which must first
// distinguish op tags from the grammar's control bytes).
func DeserializeFromTag(ctx *Context, tag byte) (Op, error) {
	switch tag {
	case TagSHA256, TagSHA1, TagRIPEMD160, TagKeccak256, TagReverse, TagHexlify:
		return Op{tag: tag}, nil
	case TagAppend, TagPrepend:
		payload, err := ctx.ReadVarBytes(0, 0)
		if err != nil {
			return Op{}, err
		}
		return Op{tag: tag, payload: string(payload)}, nil
	default:
		return Op{}, &tserrors.UnknownTagError{Tag: tag}
	}
}
