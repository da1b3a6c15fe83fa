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

var (
	TWCCHeader = []string{
		"ts_s", "ts_us", "ip_src", "ip_dst", "udp_src", "udp_dst",
		"sender_ssrc", "media_ssrc", "fb_pkt_cnt", "rtp_tw_seq", "rxd", "rx_time",
	}
	NACKHeader = []string{
		"ts_s", "ts_us", "nack_pkt", "ip_src", "ip_dst", "udp_src", "udp_dst", "pid", "blp_count",
	}
	RRHeader = []string{
		"ts_s", "ts_us", "ip_src", "ip_dst", "udp_src", "udp_dst",
		"sender_ssrc", "ssrc", "jitter", "frac_lost", "cum_lost",
	}
)

// RTCPWriter writes the TWCC, NACK and RR files of the RTCP feedbacks.
type RTCPWriter struct {
	TWCC *Writer
	NACK *Writer
	RR   *Writer
}

// CreateRTCP creates the three files, removing none of them on failure.
func CreateRTCP(twcc, nack, rr string) (*RTCPWriter, error) {
	v := &RTCPWriter{}

	var err error
	if v.TWCC, err = Create(twcc, TWCCHeader); err != nil {
		return nil, err
	}
	if v.NACK, err = Create(nack, NACKHeader); err != nil {
		v.Close()
		return nil, err
	}
	if v.RR, err = Create(rr, RRHeader); err != nil {
		v.Close()
		return nil, err
	}

	return v, nil
}

func NewRTCPWriter(twcc, nack, rr io.Writer) (*RTCPWriter, error) {
	v := &RTCPWriter{}

	var err error
	if v.TWCC, err = NewWriter(twcc, TWCCHeader); err != nil {
		return nil, err
	}
	if v.NACK, err = NewWriter(nack, NACKHeader); err != nil {
		return nil, err
	}
	if v.RR, err = NewWriter(rr, RRHeader); err != nil {
		return nil, err
	}

	return v, nil
}

// WriteFeedback writes the rows of f carried by d. NACK messages are numbered from 1
// over the whole capture, nackSeen is the count of those before f.
func (v *RTCPWriter) WriteFeedback(d *capture.Datagram, f *rtc.Feedback, nackSeen int) error {
	sec, usec := timestamp(d.Timestamp)

	ep := d.Endpoint()
	src, dst := ip(ep.SrcIP), ip(ep.DstIP)
	srcPort, dstPort := uitoa(uint64(ep.SrcPort)), uitoa(uint64(ep.DstPort))

	for _, s := range f.TWCC {
		rxTime := NA
		if s.Received {
			rxTime = strconv.FormatFloat(s.ReceiveTimeMs, 'f', 2, 64)
		}

		if err := v.TWCC.Write([]string{
			sec, usec, src, dst, srcPort, dstPort,
			uitoa(uint64(s.SenderSSRC)), uitoa(uint64(s.MediaSSRC)), uitoa(uint64(s.FbPktCount)),
			uitoa(uint64(s.SequenceNumber)), strconv.FormatBool(s.Received), rxTime,
		}); err != nil {
			return err
		}
	}

	for _, n := range f.NACK {
		if err := v.NACK.Write([]string{
			sec, usec, strconv.Itoa(nackSeen + n.Message + 1), src, dst, srcPort, dstPort,
			uitoa(uint64(n.PacketID)), strconv.Itoa(n.LostAfter),
		}); err != nil {
			return err
		}
	}

	for _, r := range f.RR {
		if err := v.RR.Write([]string{
			sec, usec, src, dst, srcPort, dstPort,
			uitoa(uint64(r.SenderSSRC)), uitoa(uint64(r.SSRC)), uitoa(uint64(r.Jitter)),
			uitoa(uint64(r.FractionLost)), uitoa(uint64(r.TotalLost)),
		}); err != nil {
			return err
		}
	}

	return nil
}

// Lines is the number of rows over the three files.
func (v *RTCPWriter) Lines() int {
	var n int
	for _, w := range []*Writer{v.TWCC, v.NACK, v.RR} {
		if w != nil {
			n += w.Lines()
		}
	}
	return n
}

// Close closes every file, returning the first error.
func (v *RTCPWriter) Close() error {
	var err error
	for _, w := range []*Writer{v.TWCC, v.NACK, v.RR} {
		if w == nil {
			continue
		}
		if r0 := w.Close(); r0 != nil && err == nil {
			err = r0
		}
	}
	return err
}
