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

// Package report writes the per packet CSV files.
package report

import (
	"encoding/csv"
	"github.com/ossrs/go-oryx-lib/errors"
	"io"
	"net"
	"os"
	"strconv"
	"time"
)

// NA is written for a missing value.
const NA = "NA"

// Writer is a CSV file with a fixed header, counting the records written.
type Writer struct {
	w      *csv.Writer
	closer io.Closer
	header []string
	lines  int
}

// Create truncates filename and writes the header.
func Create(filename string, header []string) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "create %v", filename)
	}

	v, err := NewWriter(f, header)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "write header to %v", filename)
	}
	v.closer = f
	return v, nil
}

// NewWriter writes the header to w. Close flushes but never closes w.
func NewWriter(w io.Writer, header []string) (*Writer, error) {
	v := &Writer{w: csv.NewWriter(w), header: header}
	if err := v.w.Write(header); err != nil {
		return nil, errors.Wrapf(err, "write header")
	}
	return v, nil
}

// Write writes one record, which must match the header.
func (v *Writer) Write(record []string) error {
	if len(record) != len(v.header) {
		return errors.Errorf("%v fields, header has %v", len(record), len(v.header))
	}

	if err := v.w.Write(record); err != nil {
		return errors.Wrapf(err, "write record %v", v.lines)
	}
	v.lines++
	return nil
}

// Lines is the number of records written, the header excluded.
func (v *Writer) Lines() int {
	return v.lines
}

// Close flushes the records, and closes the file when the writer owns it.
func (v *Writer) Close() error {
	v.w.Flush()
	err := v.w.Error()

	if v.closer != nil {
		if r0 := v.closer.Close(); r0 != nil && err == nil {
			err = r0
		}
		v.closer = nil
	}

	if err != nil {
		return errors.Wrapf(err, "close")
	}
	return nil
}

func timestamp(t time.Time) (string, string) {
	return strconv.FormatInt(t.Unix(), 10), strconv.Itoa(t.Nanosecond() / 1000)
}

func ip(v net.IP) string {
	if v == nil {
		return NA
	}
	return v.String()
}

func uitoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
