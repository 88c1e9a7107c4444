// Copyright 2025 Certen Protocol

package attestation

import (
	"bytes"
	"testing"

	"github.com/certen/tsengine/pkg/serialize"
)

func roundTrip(t *testing.T, a Attestation) Attestation {
	t.Helper()
	var buf bytes.Buffer
	if err := a.Serialize(serialize.NewWriter(&buf)); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := Deserialize(serialize.NewReader(&buf))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	return got
}

func TestPending_RoundTrip(t *testing.T) {
	p := Pending{URI: "https://a.pool.opentimestamps.org"}
	got := roundTrip(t, p)
	if got != Attestation(p) {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestBitcoin_RoundTrip(t *testing.T) {
	b := Bitcoin{Height: 750123}
	got := roundTrip(t, b)
	if got != Attestation(b) {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, b)
	}
}

func TestBitcoin_ZeroHeight(t *testing.T) {
	b := Bitcoin{Height: 0}
	got := roundTrip(t, b)
	if got != Attestation(b) {
		t.Errorf("round-trip mismatch for zero height: got %+v, want %+v", got, b)
	}
}

func TestUnknown_RoundTrip(t *testing.T) {
	u := Unknown{Data: "opaque payload"}
	got := roundTrip(t, u)
	if got != Attestation(u) {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, u)
	}
}

func TestUnknown_RoundTrip_UnregisteredMagic(t *testing.T) {
	// A magic this registry has never seen, distinct from all five
	// registered constants, must still round-trip via the Unknown catch-all
	// rather than erroring out of Deserialize.
	arbitrary := Magic{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	u := Unknown{RawMagic: arbitrary, Data: "forward-compatible payload"}
	got := roundTrip(t, u)
	if got != Attestation(u) {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, u)
	}
	if got.Magic() != arbitrary {
		t.Errorf("magic not preserved: got %x, want %x", got.Magic(), arbitrary)
	}
}

func TestTotalOrder_ByMagicThenPayload(t *testing.T) {
	a1 := Unknown{Data: "aaa"}
	a2 := Unknown{Data: "bbb"}
	if !Less(a1, a2) || Less(a2, a1) {
		t.Error("same-magic attestations should order by payload")
	}

	bit := Bitcoin{Height: 1}
	if !Less(bit, a1) {
		t.Error("Bitcoin (magic 0x05...) should sort before Unknown (magic 0x84...)")
	}
}

func TestAttestation_AsMapKey(t *testing.T) {
	set := map[Attestation]struct{}{}
	set[Pending{URI: "x"}] = struct{}{}
	set[Bitcoin{Height: 5}] = struct{}{}
	if len(set) != 2 {
		t.Errorf("expected 2 distinct attestations, got %d", len(set))
	}
	if _, ok := set[Pending{URI: "x"}]; !ok {
		t.Error("Attestation should be usable as a stable map key")
	}
}
