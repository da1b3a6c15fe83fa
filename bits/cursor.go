// The MIT License (MIT)
//
// Copyright (c) 2021 srs-bench(ossrs)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
package bits

import (
	"github.com/ossrs/go-oryx-lib/errors"
)

// ErrOutOfRange is returned when a read would go past the end of the buffer.
var ErrOutOfRange = errors.New("bits: out of range")

// ErrInvalidWidth is returned for a field width outside [1, 32], or a zero
// non-symmetric range.
var ErrInvalidWidth = errors.New("bits: invalid width")

// MaxWidth is the widest field Extract can return.
const MaxWidth = 32

// Extract reads n bits starting at absolute bit offset from, MSB-first. Bit 0 of
// byte 0 is the most significant bit of that byte. The first extracted bit lands
// at bit position n-1 of the result.
func Extract(b []byte, from, n int) (uint32, error) {
	if n < 1 || n > MaxWidth {
		return 0, errors.Wrapf(ErrInvalidWidth, "extract %v bits", n)
	}
	if from < 0 || from > len(b)*8-n {
		return 0, errors.Wrapf(ErrOutOfRange, "extract %v bits at %v of %v", n, from, len(b)*8)
	}

	var v uint32
	for i := from; i < from+n; i++ {
		v = v<<1 | uint32(b[i/8]>>(7-uint(i%8))&0x01)
	}
	return v, nil
}

// Cursor reads bits MSB-first from a byte slice, keeping the current offset.
// A failed read leaves the offset unchanged.
type Cursor struct {
	data   []byte
	offset int
}

func NewCursor(b []byte) *Cursor {
	return &Cursor{data: b}
}

// Offset is the number of bits consumed so far.
func (v *Cursor) Offset() int {
	return v.offset
}

// Len is the total number of bits in the buffer.
func (v *Cursor) Len() int {
	return len(v.data) * 8
}

func (v *Cursor) Remaining() int {
	return v.Len() - v.offset
}

func (v *Cursor) ReadBits(n int) (uint32, error) {
	r, err := Extract(v.data, v.offset, n)
	if err != nil {
		return 0, err
	}

	v.offset += n
	return r, nil
}

func (v *Cursor) ReadBool() (bool, error) {
	r, err := v.ReadBits(1)
	return r == 1, err
}

// ReadNonSymmetric reads a value in [0, n) coded with NonSymmetric.
func (v *Cursor) ReadNonSymmetric(n uint32) (uint32, error) {
	r, consumed, err := NonSymmetric(v.data, v.offset, n)
	if err != nil {
		return 0, err
	}

	v.offset += consumed
	return r, nil
}

// Skip advances the offset by n bits.
func (v *Cursor) Skip(n int) error {
	if n < 0 || n > v.Remaining() {
		return errors.Wrapf(ErrOutOfRange, "skip %v bits at %v of %v", n, v.offset, v.Len())
	}

	v.offset += n
	return nil
}
