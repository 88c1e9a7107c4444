// Copyright 2025 Certen Protocol
//
// Concrete attestation kinds. Grounded on the OpenTimestamps attestation
// catalogue (pending-calendar URI, Bitcoin/Litecoin block height, the
// Ethereum community extension, and a catch-all "unknown" kind for
// forward-compatible round-tripping of attestations this engine doesn't
// otherwise understand).

package attestation

import (
	"encoding/binary"

	"github.com/certen/tsengine/pkg/tserrors"
)

// Pending attests that a message was submitted to a calendar server at uri,
// and is awaiting a confirmed attestation.
type Pending struct {
	URI string
}

func (p Pending) Magic() Magic        { return MagicPending }
func (p Pending) Payload() []byte     { return []byte(p.URI) }
func (p Pending) Less(o Attestation) bool { return Less(p, o) }
func (p Pending) Serialize(ctx *Context) error {
	return serializeFrame(ctx, MagicPending, p.Payload())
}

// Bitcoin attests that a message was committed in the Bitcoin block at Height.
type Bitcoin struct {
	Height uint64
}

func (b Bitcoin) Magic() Magic        { return MagicBitcoin }
func (b Bitcoin) Payload() []byte     { return encodeHeight(b.Height) }
func (b Bitcoin) Less(o Attestation) bool { return Less(b, o) }
func (b Bitcoin) Serialize(ctx *Context) error {
	return serializeFrame(ctx, MagicBitcoin, b.Payload())
}

// Litecoin attests that a message was committed in the Litecoin block at Height.
type Litecoin struct {
	Height uint64
}

func (l Litecoin) Magic() Magic        { return MagicLitecoin }
func (l Litecoin) Payload() []byte     { return encodeHeight(l.Height) }
func (l Litecoin) Less(o Attestation) bool { return Less(l, o) }
func (l Litecoin) Serialize(ctx *Context) error {
	return serializeFrame(ctx, MagicLitecoin, l.Payload())
}

// Ethereum attests that a message was committed in the Ethereum block at
// Height. A community extension, not part of the original protocol.
type Ethereum struct {
	Height uint64
}

func (e Ethereum) Magic() Magic        { return MagicEthereum }
func (e Ethereum) Payload() []byte     { return encodeHeight(e.Height) }
func (e Ethereum) Less(o Attestation) bool { return Less(e, o) }
func (e Ethereum) Serialize(ctx *Context) error {
	return serializeFrame(ctx, MagicEthereum, e.Payload())
}

// Unknown wraps an attestation payload under a magic this engine doesn't
// register a concrete kind for, so it can still round-trip. A zero RawMagic
// (the default when constructed directly) stands for MagicUnknown.
// Deserialize fills in whatever other magic it actually read, preserving it
// on re-serialization, and leaves RawMagic zero when it read MagicUnknown.
type Unknown struct {
	RawMagic Magic
	Data     string
}

func (u Unknown) Magic() Magic {
	if u.RawMagic == (Magic{}) {
		return MagicUnknown
	}
	return u.RawMagic
}
func (u Unknown) Payload() []byte         { return []byte(u.Data) }
func (u Unknown) Less(o Attestation) bool { return Less(u, o) }
func (u Unknown) Serialize(ctx *Context) error {
	return serializeFrame(ctx, u.Magic(), []byte(u.Data))
}

// encodeHeight big-endian-encodes a block height with leading zero bytes
// trimmed, matching the OTS reference's compact block-height encoding.
func encodeHeight(height uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

func decodeHeight(data []byte) (uint64, error) {
	var padded [8]byte
	if len(data) > 8 {
		return 0, &lengthError{got: len(data), max: 8}
	}
	copy(padded[8-len(data):], data)
	return binary.BigEndian.Uint64(padded[:]), nil
}

type lengthError struct {
	got, max int
}

func (e *lengthError) Error() string { return "attestation: block height payload too long" }

func (e *lengthError) Unwrap() error { return tserrors.ErrLengthOutOfRange }
