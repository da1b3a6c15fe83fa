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
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"testing"
)

// offset=1, dt_cnt=2, four templates over two spatial and two temporal layers.
var descriptorWithStructure = []byte{0x81, 0x12, 0x34, 0x80, 0x21, 0x67, 0xE4, 0xF9, 0x41, 0x1F, 0x80}

var defaultIDs = ExtensionIDs{TransportCC: 3, AbsSendTime: 2, DependencyDescriptor: 12}

func marshalRTP(t *testing.T, payload []byte, exts map[uint8][]byte, order ...uint8) []byte {
	p := &rtp.Packet{
		Header: rtp.Header{
			Version: 2, PayloadType: 45, SequenceNumber: 100, Timestamp: 9000, SSRC: 0x1234,
		},
		Payload: payload,
	}
	for _, id := range order {
		if err := p.Header.SetExtension(id, exts[id]); err != nil {
			t.Fatalf("set extension %v err %+v", id, err)
		}
	}

	b, err := p.Marshal()
	if err != nil {
		t.Fatalf("marshal err %+v", err)
	}
	return b
}

func TestClassify(t *testing.T) {
	rtpPacket := []byte{0x80, 0x60, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1}
	rtpMarker := []byte{0x80, 0xE0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1}
	rr := []byte{0x81, 0xC9, 0, 7, 0, 0, 0, 1, 0, 0, 0, 2}
	stun := []byte{0x00, 0x01, 0, 0, 0x21, 0x12, 0xA4, 0x42, 0, 0, 0, 0}

	for _, c := range []struct {
		b                    []byte
		either, isRTCP, isRTP bool
	}{
		{rtpPacket, true, false, true},
		{rtpMarker, true, false, true},
		{rr, true, true, false},
		{stun, false, false, false},
		{rtpPacket[:11], false, false, false},
	} {
		if IsRTPOrRTCP(c.b) != c.either || IsRTCP(c.b) != c.isRTCP || IsRTP(c.b) != c.isRTP {
			t.Errorf("%x got %v/%v/%v", c.b, IsRTPOrRTCP(c.b), IsRTCP(c.b), IsRTP(c.b))
		}
	}
}

func TestParseRTP(t *testing.T) {
	b := marshalRTP(t, []byte{1, 2, 3, 4}, map[uint8][]byte{
		3:  {0x01, 0x2C},
		2:  {0x40, 0x00, 0x00},
		12: descriptorWithStructure,
	}, 3, 2, 12)

	v, err := ParseRTP(b, defaultIDs)
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	if v.SSRC != 0x1234 || v.PayloadType != 45 || v.SequenceNumber != 100 || v.Timestamp != 9000 || v.Marker {
		t.Errorf("header %+v", v)
	}
	// 4 bytes block header, 3+4+12 bytes of elements, padded to 24.
	if v.ExtensionLength != 24 || v.MediaLength != 4 {
		t.Errorf("ext len %v, media len %v", v.ExtensionLength, v.MediaLength)
	}
	if v.TransportSequence == nil || *v.TransportSequence != 300 {
		t.Errorf("twcc seq %v", v.TransportSequence)
	}
	if v.AbsSendTimeMs == nil || *v.AbsSendTimeMs != 16000 {
		t.Errorf("abs send time %v", v.AbsSendTimeMs)
	}
	if v.DescriptorErr != nil || v.Descriptor == nil {
		t.Errorf("descriptor %v, err %+v", v.Descriptor, v.DescriptorErr)
		return
	}
	if v.Descriptor.FrameNumber != 0x1234 || v.Descriptor.TemplateID != 1 || v.Descriptor.Structure.TemplateCnt != 4 {
		t.Errorf("descriptor %v", v.Descriptor)
	}
}

func TestParseRTPWithoutExtensions(t *testing.T) {
	v, err := ParseRTP(marshalRTP(t, []byte{1, 2, 3}, nil), defaultIDs)
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}
	if v.ExtensionLength != 0 || v.MediaLength != 3 || v.TransportSequence != nil ||
		v.AbsSendTimeMs != nil || v.Mandatory != nil || v.Descriptor != nil || v.DescriptorErr != nil {
		t.Errorf("got %+v", v)
	}
}

func TestParseRTPDisabledAndOtherIDs(t *testing.T) {
	b := marshalRTP(t, []byte{1}, map[uint8][]byte{
		5:  {0x01, 0x2C},
		12: {0x05, 0x00, 0x07},
	}, 5, 12)

	v, err := ParseRTP(b, ExtensionIDs{TransportCC: 3})
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}
	if v.TransportSequence != nil || v.Descriptor != nil {
		t.Errorf("got %+v", v)
	}

	if v, err = ParseRTP(b, ExtensionIDs{TransportCC: 5, DependencyDescriptor: 12}); err != nil {
		t.Errorf("err %+v", err)
		return
	}
	if v.TransportSequence == nil || *v.TransportSequence != 300 || v.Descriptor == nil || v.Descriptor.TemplateID != 5 {
		t.Errorf("got %+v", v)
	}
}

func TestParseRTPDescriptorErrors(t *testing.T) {
	// Under 3 bytes, ignored.
	v, err := ParseRTP(marshalRTP(t, []byte{1}, map[uint8][]byte{12: {0x05, 0x00}}, 12), defaultIDs)
	if err != nil || v.Mandatory != nil || v.Descriptor != nil || v.DescriptorErr != nil {
		t.Errorf("short descriptor got %+v, err %+v", v, err)
	}

	// Structure flag set but the table is cut.
	v, err = ParseRTP(marshalRTP(t, []byte{1}, map[uint8][]byte{12: {0x05, 0x00, 0x07, 0x80}}, 12), defaultIDs)
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}
	if v.Mandatory == nil || v.Mandatory.TemplateID != 5 || v.Mandatory.FrameNumber != 7 {
		t.Errorf("mandatory fields %+v", v.Mandatory)
	}
	if v.Descriptor != nil || errors.Cause(v.DescriptorErr) != av1.ErrOutOfRange {
		t.Errorf("truncated descriptor got %v, err %+v", v.Descriptor, v.DescriptorErr)
	}
	if v.SequenceNumber != 100 {
		t.Errorf("header lost with the descriptor %+v", v)
	}
}

func TestParseRTPPadding(t *testing.T) {
	for _, c := range []struct {
		payload []byte
		padding byte
	}{
		{[]byte{1, 2, 3, 4}, 3},
		{[]byte{1, 2, 3, 4, 5, 6, 7, 8}, 4},
		// The last media byte looks like a padding count.
		{[]byte{9, 9, 9, 2}, 1},
	} {
		p := &rtp.Packet{
			Header:      rtp.Header{Version: 2, PayloadType: 96, SequenceNumber: 1, SSRC: 1},
			Payload:     c.payload,
			PaddingSize: c.padding,
		}
		b, err := p.Marshal()
		if err != nil {
			t.Errorf("err %+v", err)
			return
		}
		if b[0]&0x20 == 0 || len(b) != 12+len(c.payload)+int(c.padding) {
			t.Errorf("no padding in %x", b)
			return
		}

		v, err := ParseRTP(b, defaultIDs)
		if err != nil {
			t.Errorf("err %+v", err)
			return
		}
		if v.MediaLength != len(c.payload) {
			t.Errorf("media len %v, want %v", v.MediaLength, len(c.payload))
		}
		if v.ExtensionLength != 0 {
			t.Errorf("extension len %v", v.ExtensionLength)
		}
	}
}

func TestParseRTPPaddingWithExtension(t *testing.T) {
	p := &rtp.Packet{
		Header: rtp.Header{
			Version: 2, PayloadType: 45, SequenceNumber: 7, SSRC: 0x1234, CSRC: []uint32{1, 2},
		},
		Payload:     []byte{1, 2, 3, 4, 5},
		PaddingSize: 3,
	}
	if err := p.Header.SetExtension(3, []byte{0x01, 0x2C}); err != nil {
		t.Errorf("err %+v", err)
		return
	}
	b, err := p.Marshal()
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	v, err := ParseRTP(b, defaultIDs)
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}
	// 4 bytes block header, 3 bytes of element, padded to 8.
	if v.ExtensionLength != 8 || v.MediaLength != 5 {
		t.Errorf("ext len %v, media len %v", v.ExtensionLength, v.MediaLength)
	}
	if v.TransportSequence == nil || *v.TransportSequence != 300 {
		t.Errorf("twcc seq %v", v.TransportSequence)
	}
}

func TestParseRTPRejects(t *testing.T) {
	rr, err := (&rtcp.ReceiverReport{SSRC: 1}).Marshal()
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	for i, b := range [][]byte{nil, {0x00, 0x01, 0x02}, rr} {
		if _, err := ParseRTP(b, defaultIDs); errors.Cause(err) != ErrNotRTP {
			t.Errorf("#%v got %+v", i, err)
		}
	}

	// Extension bit set but the block is missing.
	b := []byte{0x90, 0x60, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1}
	if _, err := ParseRTP(b, defaultIDs); err == nil {
		t.Errorf("truncated extension accepted")
	}
}

func TestAbsSendTimeToMs(t *testing.T) {
	for _, c := range []struct {
		ts   uint64
		want uint32
	}{
		{0, 0},
		{1 << 18, 1000},
		{1 << 17, 500},
		{0xFFFFFF, 63999},
		{0x1000000 | 1<<18, 1000},
	} {
		if v := AbsSendTimeToMs(c.ts); v != c.want {
			t.Errorf("%#x got %v, want %v", c.ts, v, c.want)
		}
	}
}
