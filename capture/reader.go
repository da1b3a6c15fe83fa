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

// Package capture reads pcap and pcapng files and locates the UDP payload of each
// frame, looking through a GTP-U tunnel when there is one.
package capture

import (
	"bufio"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/ossrs/go-oryx-lib/errors"
	"io"
	"os"
	"time"
)

var ErrUnsupportedLinkType = errors.New("capture: unsupported link type")

// The section header block type, which is also the first 4 bytes of a pcapng file.
var pcapngMagic = []byte{0x0A, 0x0D, 0x0D, 0x0A}

// Frame is a captured link layer frame.
type Frame struct {
	Timestamp time.Time
	// Bytes present in Data, may be less than Length when the snaplen truncated it.
	CaptureLength int
	// Bytes on the wire.
	Length int
	Data   []byte
}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Reader iterates the frames of a capture.
type Reader struct {
	r      packetReader
	closer io.Closer
}

// Open opens a pcap or pcapng file.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", filename)
	}

	v, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "read %v", filename)
	}

	v.closer = f
	return v, nil
}

// NewReader detects pcap or pcapng from the magic of r.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(pcapngMagic))
	if err != nil {
		return nil, errors.Wrapf(err, "peek magic")
	}

	v := &Reader{}
	if string(magic) == string(pcapngMagic) {
		if v.r, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions); err != nil {
			return nil, errors.Wrapf(err, "new pcapng reader")
		}
	} else {
		if v.r, err = pcapgo.NewReader(br); err != nil {
			return nil, errors.Wrapf(err, "new pcap reader")
		}
	}

	if !IsSupportedLinkType(v.r.LinkType()) {
		return nil, errors.Wrapf(ErrUnsupportedLinkType, "%v", v.r.LinkType())
	}
	return v, nil
}

// IsSupportedLinkType is true for the link layers Decode understands.
func IsSupportedLinkType(t layers.LinkType) bool {
	switch t {
	case layers.LinkTypeEthernet, layers.LinkTypeLinuxSLL, layers.LinkTypeNull, layers.LinkTypeLoop,
		layers.LinkTypeRaw, layers.LinkTypeIPv4:
		return true
	}
	return false
}

func (v *Reader) LinkType() layers.LinkType {
	return v.r.LinkType()
}

// Next returns the next frame, or io.EOF at the end of the capture.
func (v *Reader) Next() (*Frame, error) {
	data, ci, err := v.r.ReadPacketData()
	if err == io.EOF {
		return nil, err
	} else if err != nil {
		return nil, errors.Wrapf(err, "read packet")
	}

	return &Frame{
		Timestamp:     ci.Timestamp,
		CaptureLength: ci.CaptureLength,
		Length:        ci.Length,
		Data:          data,
	}, nil
}

func (v *Reader) Close() error {
	if v.closer == nil {
		return nil
	}
	return v.closer.Close()
}
