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
	"math"
	"testing"
)

func TestExtract(t *testing.T) {
	b := []byte{0xAB, 0xCD, 0xEF, 0x01, 0x80}

	for _, c := range []struct {
		from, n int
		want    uint32
	}{
		{0, 1, 1},
		{1, 1, 0},
		{0, 4, 0xA},
		{4, 4, 0xB},
		{0, 12, 0xABC},
		{4, 8, 0xBC},
		{0, 16, 0xABCD},
		{0, 32, 0xABCDEF01},
		{8, 32, 0xCDEF0180},
		{32, 1, 1},
		{39, 1, 0},
		{6, 5, 0x1E},
	} {
		if v, err := Extract(b, c.from, c.n); err != nil {
			t.Errorf("extract(%v,%v) err %+v", c.from, c.n, err)
		} else if v != c.want {
			t.Errorf("extract(%v,%v) got %#x, want %#x", c.from, c.n, v, c.want)
		}
	}
}

func TestExtractOutOfRange(t *testing.T) {
	b := []byte{0xFF, 0xFF}

	for _, c := range []struct {
		from, n int
	}{
		{0, 17}, {16, 1}, {9, 8}, {-1, 1}, {100, 1}, {math.MaxInt - 2, 8}, {math.MaxInt, 1},
	} {
		if _, err := Extract(b, c.from, c.n); errors.Cause(err) != ErrOutOfRange {
			t.Errorf("extract(%v,%v) want out of range, got %+v", c.from, c.n, err)
		}
	}

	if _, err := Extract(nil, 0, 1); errors.Cause(err) != ErrOutOfRange {
		t.Errorf("extract on empty buffer, got %+v", err)
	}
}

func TestExtractInvalidWidth(t *testing.T) {
	b := make([]byte, 8)
	for _, n := range []int{0, -1, 33, 64} {
		if _, err := Extract(b, 0, n); errors.Cause(err) != ErrInvalidWidth {
			t.Errorf("extract %v bits, want invalid width, got %+v", n, err)
		}
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor([]byte{0xC5, 0x00, 0x07})
	if c.Len() != 24 || c.Remaining() != 24 || c.Offset() != 0 {
		t.Errorf("len=%v, remaining=%v, offset=%v", c.Len(), c.Remaining(), c.Offset())
	}

	if v, err := c.ReadBool(); err != nil || !v {
		t.Errorf("bit 0 got %v, err %+v", v, err)
	}
	if v, err := c.ReadBool(); err != nil || !v {
		t.Errorf("bit 1 got %v, err %+v", v, err)
	}
	if v, err := c.ReadBits(6); err != nil || v != 5 {
		t.Errorf("template id got %v, err %+v", v, err)
	}
	if v, err := c.ReadBits(16); err != nil || v != 7 {
		t.Errorf("frame number got %v, err %+v", v, err)
	}
	if c.Remaining() != 0 || c.Offset() != 24 {
		t.Errorf("remaining=%v, offset=%v", c.Remaining(), c.Offset())
	}

	if _, err := c.ReadBits(1); errors.Cause(err) != ErrOutOfRange {
		t.Errorf("read past end, got %+v", err)
	}
	if c.Offset() != 24 {
		t.Errorf("failed read moved offset to %v", c.Offset())
	}
}

func TestCursorSkip(t *testing.T) {
	c := NewCursor([]byte{0x0F})
	if err := c.Skip(4); err != nil {
		t.Errorf("skip err %+v", err)
	}
	if v, err := c.ReadBits(4); err != nil || v != 0xF {
		t.Errorf("got %v, err %+v", v, err)
	}
	if err := c.Skip(1); errors.Cause(err) != ErrOutOfRange {
		t.Errorf("skip past end, got %+v", err)
	}
	if err := c.Skip(-1); errors.Cause(err) != ErrOutOfRange {
		t.Errorf("negative skip, got %+v", err)
	}
}

func TestCursorNonSymmetric(t *testing.T) {
	// ns(3): "0" -> 0, "10" -> 1, "11" -> 2
	c := NewCursor([]byte{0x5C}) // 0 10 11 100
	for i, want := range []uint32{0, 1, 2} {
		if v, err := c.ReadNonSymmetric(3); err != nil || v != want {
			t.Errorf("#%v got %v want %v, err %+v", i, v, want, err)
		}
	}
	if c.Offset() != 5 {
		t.Errorf("offset %v, want 5", c.Offset())
	}
}
