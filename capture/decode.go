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
package capture

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/ossrs/go-oryx-lib/errors"
	"net"
	"time"
)

// DefaultGTPPort is the registered GTP-U port.
const DefaultGTPPort = 2152

const (
	EncapUDP = "udp"
	EncapGTP = "gtp"
)

// ErrNotUDP means the frame does not carry an IPv4 UDP datagram.
var ErrNotUDP = errors.New("capture: not ipv4 udp")

// Endpoint is the IPv4 and UDP addressing of a datagram.
type Endpoint struct {
	SrcIP   net.IP
	DstIP   net.IP
	TTL     uint8
	SrcPort uint16
	DstPort uint16
	// The UDP length field, header included.
	Length uint16
}

// Datagram is the innermost UDP datagram of a frame.
type Datagram struct {
	Timestamp   time.Time
	FrameLength int
	// EncapUDP or EncapGTP.
	Encap string
	Outer Endpoint
	// The tunneled datagram, only for EncapGTP.
	Inner   *Endpoint
	Payload []byte
}

// Endpoint is the innermost endpoint.
func (v *Datagram) Endpoint() *Endpoint {
	if v.Inner != nil {
		return v.Inner
	}
	return &v.Outer
}

// HasPort is true when either port of the innermost endpoint is in ports.
func (v *Datagram) HasPort(ports map[uint16]bool) bool {
	ep := v.Endpoint()
	return ports[ep.SrcPort] || ports[ep.DstPort]
}

var decodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

// Decode finds the IPv4 UDP datagram in f. When a UDP port equals gtpPort the
// payload is decoded as GTPv1-U, and the tunneled IPv4 UDP datagram becomes the
// inner endpoint; a tunnel without one is ErrNotUDP.
func Decode(f *Frame, linkType layers.LinkType, gtpPort uint16) (*Datagram, error) {
	packet := gopacket.NewPacket(f.Data, linkType, decodeOptions)

	outer, udp, err := findUDP(packet)
	if err != nil {
		return nil, err
	}

	v := &Datagram{
		Timestamp:   f.Timestamp,
		FrameLength: f.Length,
		Encap:       EncapUDP,
		Outer:       *outer,
		Payload:     udp.Payload,
	}
	if gtpPort == 0 || (udp.SrcPort != layers.UDPPort(gtpPort) && udp.DstPort != layers.UDPPort(gtpPort)) {
		return v, nil
	}

	tunnel := gopacket.NewPacket(udp.Payload, layers.LayerTypeGTPv1U, decodeOptions)
	if tunnel.Layer(layers.LayerTypeGTPv1U) == nil {
		return nil, errors.Wrapf(ErrNotUDP, "no gtp-u header")
	}

	inner, innerUDP, err := findUDP(tunnel)
	if err != nil {
		return nil, errors.Wrapf(err, "inside gtp-u")
	}

	v.Encap = EncapGTP
	v.Inner = inner
	v.Payload = innerUDP.Payload
	return v, nil
}

func findUDP(packet gopacket.Packet) (*Endpoint, *layers.UDP, error) {
	ip, ok := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok {
		return nil, nil, errors.Wrapf(ErrNotUDP, "no ipv4")
	}
	if ip.Protocol != layers.IPProtocolUDP {
		return nil, nil, errors.Wrapf(ErrNotUDP, "ip protocol %v", ip.Protocol)
	}

	udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if !ok {
		return nil, nil, errors.Wrapf(ErrNotUDP, "truncated udp")
	}

	return &Endpoint{
		SrcIP:   ip.SrcIP,
		DstIP:   ip.DstIP,
		TTL:     ip.TTL,
		SrcPort: uint16(udp.SrcPort),
		DstPort: uint16(udp.DstPort),
		Length:  udp.Length,
	}, udp, nil
}
