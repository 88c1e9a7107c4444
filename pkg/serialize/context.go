// Copyright 2025 Certen Protocol
//
// Serialization context: a thin, I/O-agnostic byte sink/source used by the
// op, attestation, timestamp and detached packages. The core never owns the
// underlying reader/writer or its blocking behavior — that's the caller's
// concern, per the concurrency model.

package serialize

import (
	"bufio"
	"io"

	"github.com/certen/tsengine/pkg/tserrors"
)

// Context wraps a reader and/or writer with the primitives the codec needs:
// fixed-length reads/writes and varint-length-prefixed byte strings.
type Context struct {
	r io.Reader
	w io.Writer
}

// NewReader builds a read-only Context over r.
func NewReader(r io.Reader) *Context {
	return &Context{r: bufio.NewReader(r)}
}

// NewWriter builds a write-only Context over w.
func NewWriter(w io.Writer) *Context {
	return &Context{w: w}
}

// ReadBytes reads exactly n bytes, or fails with ErrTruncated.
func (c *Context) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, tserrors.ErrTruncated
	}
	return buf, nil
}

// WriteBytes writes b verbatim.
func (c *Context) WriteBytes(b []byte) error {
	_, err := c.w.Write(b)
	return err
}

// ReadVarBytes reads a varint length followed by that many bytes. The
// length must fall within [min, max]; min <= 0 means no lower bound, max <= 0
// means no upper bound.
func (c *Context) ReadVarBytes(max, min int) ([]byte, error) {
	length, err := c.readVarInt()
	if err != nil {
		return nil, err
	}
	if (min > 0 && length < uint64(min)) || (max > 0 && length > uint64(max)) {
		return nil, &boundsError{got: int(length), min: min, max: max}
	}
	return c.ReadBytes(int(length))
}

// WriteVarBytes writes len(b) as a varint, then b.
func (c *Context) WriteVarBytes(b []byte) error {
	if err := c.writeVarInt(uint64(len(b))); err != nil {
		return err
	}
	return c.WriteBytes(b)
}

// readVarInt decodes a base-128, LSB-first varint: 7 data bits per byte,
// high bit set means "more bytes follow".
func (c *Context) readVarInt() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := c.ReadBytes(1)
		if err != nil {
			return 0, err
		}
		result |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, tserrors.ErrTruncated
		}
	}
}

func (c *Context) writeVarInt(n uint64) error {
	var buf [10]byte
	i := 0
	for n >= 0x80 {
		buf[i] = byte(n) | 0x80
		n >>= 7
		i++
	}
	buf[i] = byte(n)
	return c.WriteBytes(buf[:i+1])
}

type boundsError struct {
	got, min, max int
}

func (e *boundsError) Error() string {
	return (&tserrors.LengthOutOfRangeError{Got: e.got, Min: e.min, Max: e.max}).Error()
}

func (e *boundsError) Unwrap() error { return tserrors.ErrLengthOutOfRange }
