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

// NonSymmetric decodes a value in [0, n) from the non-symmetric unsigned code used
// by the AV1 dependency descriptor, ns(n). With w the smallest width such that
// 2^w >= n and m = 2^w - n, the first m values take w-1 bits and the rest take w.
// It returns the value and the number of bits consumed.
//
// See https://aomediacodec.github.io/av1-rtp-spec/#a82-syntax
func NonSymmetric(b []byte, from int, n uint32) (value uint32, consumed int, err error) {
	if n == 0 {
		return 0, 0, errors.Wrapf(ErrInvalidWidth, "ns(%v)", n)
	}

	w := Width(n)
	if w == 0 {
		return 0, 0, nil
	}

	m := uint32((uint64(1) << uint(w)) - uint64(n))

	var v uint32
	if w > 1 {
		if v, err = Extract(b, from, w-1); err != nil {
			return 0, 0, errors.Wrapf(err, "ns(%v) prefix", n)
		}
	}
	if v < m {
		return v, w - 1, nil
	}

	extra, err := Extract(b, from+w-1, 1)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "ns(%v) extra bit", n)
	}
	return v<<1 - m + extra, w, nil
}

// Width is the smallest w with 2^w >= n, the bit width of a plain binary code for
// n values. Width(0) and Width(1) are 0.
func Width(n uint32) int {
	var w int
	for uint64(1)<<uint(w) < uint64(n) {
		w++
	}
	return w
}
