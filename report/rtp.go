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
	"github.com/PrincetonUniversity/Domino-IMC/capture"
	"github.com/PrincetonUniversity/Domino-IMC/rtc"
	"io"
	"strconv"
)

// RTPHeader is the header of the RTP packets file.
var RTPHeader = []string{
	"ts_s", "ts_us", "encap", "ip_src", "ip_dst", "ip_ttl", "udp_src", "udp_dst",
	"gtp_ip_src", "gtp_ip_dst", "gtp_ip_ttl", "gtp_udp_src", "gtp_udp_dst",
	"rtp_tw_seq", "rtp_abs_send", "rtp_ssrc", "rtp_pt", "rtp_seq", "rtp_ts",
	"frame_len", "media_len", "av1_frame_number", "av1_template_id",
}

// RTPWriter writes one row per RTP packet.
type RTPWriter struct {
	*Writer
}

func CreateRTP(filename string) (*RTPWriter, error) {
	w, err := Create(filename, RTPHeader)
	if err != nil {
		return nil, err
	}
	return &RTPWriter{w}, nil
}

func NewRTPWriter(w io.Writer) (*RTPWriter, error) {
	v, err := NewWriter(w, RTPHeader)
	if err != nil {
		return nil, err
	}
	return &RTPWriter{v}, nil
}

// WriteRTP writes the row of packet p carried by d. The gtp_ columns describe the
// tunneled datagram, NA when d is not tunneled.
func (v *RTPWriter) WriteRTP(d *capture.Datagram, p *rtc.RTPInfo) error {
	sec, usec := timestamp(d.Timestamp)

	gtpSrc, gtpDst, gtpTTL, gtpSrcPort, gtpDstPort := NA, NA, NA, NA, NA
	if in := d.Inner; in != nil {
		gtpSrc, gtpDst = ip(in.SrcIP), ip(in.DstIP)
		gtpTTL = uitoa(uint64(in.TTL))
		gtpSrcPort, gtpDstPort = uitoa(uint64(in.SrcPort)), uitoa(uint64(in.DstPort))
	}

	twSeq := NA
	if p.TransportSequence != nil {
		twSeq = uitoa(uint64(*p.TransportSequence))
	}

	absSend := NA
	if p.AbsSendTimeMs != nil {
		absSend = uitoa(uint64(*p.AbsSendTimeMs))
	}

	frameNumber, templateID := NA, NA
	if p.Mandatory != nil {
		frameNumber = uitoa(uint64(p.Mandatory.FrameNumber))
		templateID = uitoa(uint64(p.Mandatory.TemplateID))
	}

	return v.Write([]string{
		sec, usec, d.Encap,
		ip(d.Outer.SrcIP), ip(d.Outer.DstIP), uitoa(uint64(d.Outer.TTL)),
		uitoa(uint64(d.Outer.SrcPort)), uitoa(uint64(d.Outer.DstPort)),
		gtpSrc, gtpDst, gtpTTL, gtpSrcPort, gtpDstPort,
		twSeq, absSend,
		uitoa(uint64(p.SSRC)), uitoa(uint64(p.PayloadType)), uitoa(uint64(p.SequenceNumber)),
		uitoa(uint64(p.Timestamp)),
		strconv.Itoa(d.FrameLength), strconv.Itoa(p.MediaLength),
		frameNumber, templateID,
	})
}
