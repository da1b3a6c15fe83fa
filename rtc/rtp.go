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
package rtc

import (
	"github.com/PrincetonUniversity/Domino-IMC/av1"
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/pion/rtp"
)

// ErrNotRTP means the datagram is not an RTP packet.
var ErrNotRTP = errors.New("rtc: not rtp")

// ExtensionIDs are the negotiated RTP header extension ids, 0 disables one.
type ExtensionIDs struct {
	TransportCC          uint8
	AbsSendTime          uint8
	DependencyDescriptor uint8
}

// RTPInfo is what we extract from an RTP packet.
type RTPInfo struct {
	SSRC           uint32
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	Marker         bool

	// Bytes of the extension block, its 4 bytes header included.
	ExtensionLength int
	// Payload bytes, without header, extensions and padding.
	MediaLength int

	// The transport-wide sequence number, nil without the extension.
	TransportSequence *uint16
	// The abs-send-time in ms, 6.18 fixed point seconds wrapping every 64s.
	AbsSendTimeMs *uint32

	// The first 3 bytes of the dependency descriptor, nil when shorter or absent.
	Mandatory *av1.MandatoryFields
	// Nil when the descriptor is absent or failed to decode, see DescriptorErr.
	Descriptor    *av1.DependencyDescriptor
	DescriptorErr error
}

// ParseRTP decodes the header of an RTP packet and its known extensions. A bad
// dependency descriptor does not fail the packet, it is reported in DescriptorErr.
func ParseRTP(b []byte, ids ExtensionIDs) (*RTPInfo, error) {
	if !IsRTP(b) {
		return nil, ErrNotRTP
	}

	var p rtp.Packet
	if err := p.Unmarshal(b); err != nil {
		return nil, errors.Wrapf(err, "unmarshal rtp")
	}

	v := &RTPInfo{
		SSRC:           p.SSRC,
		PayloadType:    p.PayloadType,
		SequenceNumber: p.SequenceNumber,
		Timestamp:      p.Timestamp,
		Marker:         p.Marker,
		MediaLength:    len(p.Payload),
	}
	// Unmarshal already moved the padding into PaddingSize.
	if p.Extension {
		v.ExtensionLength = p.Header.MarshalSize() - 12 - 4*len(p.CSRC)
	}

	if payload := extension(&p, ids.TransportCC); payload != nil {
		var ext rtp.TransportCCExtension
		if err := ext.Unmarshal(payload); err == nil {
			v.TransportSequence = &ext.TransportSequence
		}
	}

	if payload := extension(&p, ids.AbsSendTime); payload != nil {
		var ext rtp.AbsSendTimeExtension
		if err := ext.Unmarshal(payload); err == nil {
			ms := AbsSendTimeToMs(ext.Timestamp)
			v.AbsSendTimeMs = &ms
		}
	}

	if payload := extension(&p, ids.DependencyDescriptor); len(payload) >= av1.MandatoryFieldsLength {
		if m, err := av1.ParseMandatoryFields(payload); err == nil {
			v.Mandatory = &m
		}
		if d, err := av1.Parse(payload); err != nil {
			v.DescriptorErr = errors.Wrapf(err, "ssrc %v seq %v", p.SSRC, p.SequenceNumber)
		} else {
			v.Descriptor = d
		}
	}

	return v, nil
}

// AbsSendTimeToMs converts the 24 bits 6.18 fixed point abs-send-time to ms.
func AbsSendTimeToMs(ts uint64) uint32 {
	return uint32(((ts & 0xFFFFFF) * 1000) >> 18)
}

func extension(p *rtp.Packet, id uint8) []byte {
	if id == 0 {
		return nil
	}
	return p.GetExtension(id)
}
