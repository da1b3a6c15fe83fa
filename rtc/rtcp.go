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
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/pion/rtcp"
	"math/bits"
)

// ErrNotRTCP means the datagram is not an RTCP packet.
var ErrNotRTCP = errors.New("rtc: not rtcp")

// TWCCStatus is the fate of one transport-wide sequence number in a TWCC feedback.
type TWCCStatus struct {
	SenderSSRC     uint32
	MediaSSRC      uint32
	FbPktCount     uint8
	SequenceNumber uint16
	Received       bool
	// Receive time in ms on the feedback sender's clock, only when Received.
	ReceiveTimeMs float64
}

// NACKEntry is one PID and BLP pair of a generic NACK.
type NACKEntry struct {
	SenderSSRC uint32
	MediaSSRC  uint32
	PacketID   uint16
	// Number of bits set in the BLP, the lost packets after PacketID.
	LostAfter int
	// Index of the NACK message in the compound packet.
	Message int
}

// ReceptionEntry is one report block of a receiver report.
type ReceptionEntry struct {
	SenderSSRC   uint32
	SSRC         uint32
	Jitter       uint32
	FractionLost uint8
	TotalLost    uint32
}

// Feedback is what we extract from a compound RTCP packet.
type Feedback struct {
	TWCC []TWCCStatus
	NACK []NACKEntry
	RR   []ReceptionEntry

	TWCCMessages int
	NACKMessages int
	RRMessages   int
}

// ParseRTCP decodes a compound RTCP packet and keeps the transport-wide congestion
// control feedbacks, generic NACKs and receiver reports. Other types are ignored.
func ParseRTCP(b []byte) (*Feedback, error) {
	if !IsRTCP(b) {
		return nil, ErrNotRTCP
	}

	pkts, err := rtcp.Unmarshal(b)
	if err != nil {
		return nil, errors.Wrapf(err, "unmarshal rtcp")
	}

	v := &Feedback{}
	for _, pkt := range pkts {
		switch pkt := pkt.(type) {
		case *rtcp.TransportLayerCC:
			v.TWCCMessages++
			v.TWCC = append(v.TWCC, twccStatuses(pkt)...)
		case *rtcp.TransportLayerNack:
			for _, nack := range pkt.Nacks {
				v.NACK = append(v.NACK, NACKEntry{
					SenderSSRC: pkt.SenderSSRC,
					MediaSSRC:  pkt.MediaSSRC,
					PacketID:   nack.PacketID,
					LostAfter:  bits.OnesCount16(uint16(nack.LostPackets)),
					Message:    v.NACKMessages,
				})
			}
			v.NACKMessages++
		case *rtcp.ReceiverReport:
			v.RRMessages++
			for _, report := range pkt.Reports {
				v.RR = append(v.RR, ReceptionEntry{
					SenderSSRC:   pkt.SSRC,
					SSRC:         report.SSRC,
					Jitter:       report.Jitter,
					FractionLost: report.FractionLost,
					TotalLost:    report.TotalLost,
				})
			}
		}
	}

	return v, nil
}

// twccStatuses expands the packet status chunks into one status per sequence
// number, and accumulates the receive deltas of received packets.
func twccStatuses(pkt *rtcp.TransportLayerCC) []TWCCStatus {
	symbols := make([]uint16, 0, pkt.PacketStatusCount)
	for _, chunk := range pkt.PacketChunks {
		switch chunk := chunk.(type) {
		case *rtcp.RunLengthChunk:
			for i := uint16(0); i < chunk.RunLength; i++ {
				symbols = append(symbols, chunk.PacketStatusSymbol)
			}
		case *rtcp.StatusVectorChunk:
			for _, symbol := range chunk.SymbolList {
				// A one bit symbol is either not received or received with a small delta.
				symbols = append(symbols, symbol)
			}
		}
	}
	if len(symbols) > int(pkt.PacketStatusCount) {
		symbols = symbols[:pkt.PacketStatusCount]
	}

	// The reference time is in multiples of 64ms, deltas are in us.
	rxTime := float64(pkt.ReferenceTime) * 64
	var deltaIndex int

	r := make([]TWCCStatus, 0, len(symbols))
	for i, symbol := range symbols {
		status := TWCCStatus{
			SenderSSRC:     pkt.SenderSSRC,
			MediaSSRC:      pkt.MediaSSRC,
			FbPktCount:     pkt.FbPktCount,
			SequenceNumber: pkt.BaseSequenceNumber + uint16(i),
		}

		if symbol == rtcp.TypeTCCPacketReceivedSmallDelta || symbol == rtcp.TypeTCCPacketReceivedLargeDelta {
			if deltaIndex < len(pkt.RecvDeltas) {
				rxTime += float64(pkt.RecvDeltas[deltaIndex].Delta) / 1000
				deltaIndex++
			}
			status.Received = true
			status.ReceiveTimeMs = rxTime
		}

		r = append(r, status)
	}

	return r
}
