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
package report

import (
	"fmt"
	"github.com/PrincetonUniversity/Domino-IMC/capture"
	"io"
	"strconv"
)

// ICMPHeader is the header of the ICMP echo file.
var ICMPHeader = []string{
	"ts_s", "ts_us", "ip_src", "ip_dst", "ip_ttl",
	"icmp_type", "icmp_code", "icmp_id", "icmp_seq", "pkt_size",
}

// ICMPWriter writes one row per ICMP echo request or reply.
type ICMPWriter struct {
	*Writer
}

func CreateICMP(filename string) (*ICMPWriter, error) {
	w, err := Create(filename, ICMPHeader)
	if err != nil {
		return nil, err
	}
	return &ICMPWriter{w}, nil
}

func NewICMPWriter(w io.Writer) (*ICMPWriter, error) {
	v, err := NewWriter(w, ICMPHeader)
	if err != nil {
		return nil, err
	}
	return &ICMPWriter{v}, nil
}

// WriteEcho writes the row of e. The identifier is 4 hex digits, like ping shows
// it, and pkt_size is the frame length on the wire.
func (v *ICMPWriter) WriteEcho(e *capture.Echo) error {
	sec, usec := timestamp(e.Timestamp)

	return v.Write([]string{
		sec, usec,
		ip(e.SrcIP), ip(e.DstIP), uitoa(uint64(e.TTL)),
		uitoa(uint64(e.Type)), uitoa(uint64(e.Code)),
		fmt.Sprintf("%04x", e.ID), uitoa(uint64(e.Seq)),
		strconv.Itoa(e.FrameLength),
	})
}
