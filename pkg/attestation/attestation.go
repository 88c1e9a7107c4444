// Copyright 2025 Certen Protocol
//
// Attestation abstraction: the leaf of a timestamp proof tree, binding a
// message to some external time evidence. Concrete kinds are enumerated by
// this package (the registry the core codec treats opaquely); every kind is
// a small comparable struct so it can live directly as a key in the
// attestation set pkg/timestamp.Timestamp carries.

package attestation

import (
	"github.com/certen/tsengine/pkg/serialize"
)

// Context is the serialization context attestations read and write through.
type Context = serialize.Context

// Magic is the 8-byte self-describing tag written before every
// attestation's payload, per the "attestation encoding" wire contract.
type Magic [8]byte

// Registered magics. These only need to be stable and distinct within this
// engine — §6 requires 8 bytes, not a specific registry of values, since the
// concrete attestation catalogue is an external collaborator.
var (
	MagicPending   = Magic{0x83, 0xdf, 0xe3, 0x0d, 0x2e, 0xf9, 0x0c, 0x8e}
	MagicBitcoin   = Magic{0x05, 0x88, 0x96, 0x0d, 0x73, 0xd7, 0x19, 0x01}
	MagicLitecoin  = Magic{0x06, 0x86, 0x9a, 0x0d, 0x73, 0xd7, 0x19, 0x01}
	MagicEthereum  = Magic{0x30, 0xfe, 0x80, 0x15, 0x9c, 0xd1, 0x12, 0x55}
	MagicUnknown   = Magic{0x84, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

// Attestation is the contract every concrete leaf kind satisfies: a total
// order, equality, and a self-describing serialization. Concrete
// implementations are comparable structs so an Attestation interface value
// can be used as a set member (map[Attestation]struct{}).
type Attestation interface {
	Magic() Magic
	Payload() []byte
	Serialize(ctx *Context) error
	Less(other Attestation) bool
}

// Less orders two attestations by magic, then by payload, lexicographically.
// Every concrete kind's Less method should delegate here.
func Less(a, b Attestation) bool {
	am, bm := a.Magic(), b.Magic()
	if am != bm {
		for i := range am {
			if am[i] != bm[i] {
				return am[i] < bm[i]
			}
		}
	}
	return string(a.Payload()) < string(b.Payload())
}

// serializeFrame writes the common frame: magic, then a length-prefixed payload.
func serializeFrame(ctx *Context, magic Magic, payload []byte) error {
	if err := ctx.WriteBytes(magic[:]); err != nil {
		return err
	}
	return ctx.WriteVarBytes(payload)
}

// Deserialize reads one attestation: magic, then its length-prefixed
// payload, dispatching to the matching registered kind.
func Deserialize(ctx *Context) (Attestation, error) {
	magicBytes, err := ctx.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	var magic Magic
	copy(magic[:], magicBytes)

	payload, err := ctx.ReadVarBytes(0, 0)
	if err != nil {
		return nil, err
	}

	switch magic {
	case MagicPending:
		return Pending{URI: string(payload)}, nil
	case MagicBitcoin:
		height, err := decodeHeight(payload)
		if err != nil {
			return nil, err
		}
		return Bitcoin{Height: height}, nil
	case MagicLitecoin:
		height, err := decodeHeight(payload)
		if err != nil {
			return nil, err
		}
		return Litecoin{Height: height}, nil
	case MagicEthereum:
		height, err := decodeHeight(payload)
		if err != nil {
			return nil, err
		}
		return Ethereum{Height: height}, nil
	default:
		// Any magic this registry doesn't recognize — including, but not
		// limited to, MagicUnknown — round-trips as Unknown rather than
		// erroring, so a tree carrying an attestation kind this engine
		// doesn't understand can still be decoded, merged, and re-encoded.
		if magic == MagicUnknown {
			// A zero RawMagic already stands for MagicUnknown; keep it zero
			// so a directly constructed Unknown round-trips to an equal value.
			magic = Magic{}
		}
		return Unknown{RawMagic: magic, Data: string(payload)}, nil
	}
}
