// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package xcm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Wire format: integers are fixed width big-endian, variable length fields
// carry a uint32 big-endian length prefix, addresses are raw 32 bytes. There
// is no padding and no optional field, so every value has exactly one encoding.

const (
	AddressLen = 32
	Uint32Len  = 4
	Uint64Len  = 8

	// MaxFieldSize bounds a single length-prefixed field.
	MaxFieldSize = 256 * KiB
)

// Writer appends canonically encoded fields to a buffer.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns a writer with the given capacity hint.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

func (w *Writer) Address(a Address) {
	w.buf = append(w.buf, a[:]...)
}

func (w *Writer) Fixed(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Uint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// Bytes writes a length-prefixed byte string.
func (w *Writer) Bytes(b []byte) {
	if len(b) > MaxFieldSize || len(b) > math.MaxUint32 {
		if w.err == nil {
			w.err = fmt.Errorf("%w: field size %d exceeds maximum %d", ErrInvalidEnvelope, len(b), MaxFieldSize)
		}
		return
	}
	w.Uint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *Writer) String(s string) {
	w.Bytes([]byte(s))
}

// Finish returns the encoded bytes, or the first error hit while writing.
func (w *Writer) Finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// Reader consumes canonically encoded fields. The first failure sticks and
// every later read becomes a no-op, so callers check Err once.
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) take(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = fmt.Errorf("%w: %s needs %d bytes at offset %d, have %d",
			ErrTruncatedInput, field, n, r.off, len(r.buf)-r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Address(field string) Address {
	var a Address
	copy(a[:], r.take(AddressLen, field))
	return a
}

func (r *Reader) Fixed(n int, field string) []byte {
	b := r.take(n, field)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *Reader) Uint32(field string) uint32 {
	b := r.take(Uint32Len, field)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *Reader) Uint64(field string) uint64 {
	b := r.take(Uint64Len, field)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// Bytes reads a length-prefixed byte string. An empty field decodes to a
// non-nil empty slice so that re-encoding yields identical output.
func (r *Reader) Bytes(field string) []byte {
	n := r.Uint32(field + " length")
	if r.err != nil {
		return nil
	}
	if n > MaxFieldSize {
		r.err = fmt.Errorf("%w: %s length %d exceeds maximum %d", ErrInvalidEnvelope, field, n, MaxFieldSize)
		return nil
	}
	return r.Fixed(int(n), field)
}

func (r *Reader) String(field string) string {
	return string(r.Bytes(field))
}

// Done fails with ErrTrailingBytes if input remains unread.
func (r *Reader) Done() error {
	if r.err != nil {
		return r.err
	}
	if rest := len(r.buf) - r.off; rest != 0 {
		return fmt.Errorf("%w: %d unread bytes", ErrTrailingBytes, rest)
	}
	return nil
}

// Err returns the first read failure.
func (r *Reader) Err() error {
	return r.err
}
