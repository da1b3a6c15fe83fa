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

// ErrNotEcho means the frame does not carry an IPv4 ICMP echo request or reply.
var ErrNotEcho = errors.New("capture: not icmp echo")

// Echo is an ICMP echo request or reply, over IPv4 or tunneled in GTP-U.
type Echo struct {
	Timestamp   time.Time
	FrameLength int
	// EncapGTP when the echo was tunneled, empty otherwise.
	Encap string

	// The outermost IPv4 header, which is the tunnel for EncapGTP.
	SrcIP net.IP
	DstIP net.IP
	TTL   uint8

	Type uint8
	Code uint8
	ID   uint16
	Seq  uint16
}

// DecodeEcho finds the ICMP echo in f. The ICMP message is either carried by the
// outermost IPv4 header, or by the IPv4 packet tunneled in a GTP-U datagram when
// a UDP port equals gtpPort. Other ICMP types are ErrNotEcho.
func DecodeEcho(f *Frame, linkType layers.LinkType, gtpPort uint16) (*Echo, error) {
	packet := gopacket.NewPacket(f.Data, linkType, decodeOptions)

	ip, ok := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok {
		return nil, errors.Wrapf(ErrNotEcho, "no ipv4")
	}

	v := &Echo{
		Timestamp:   f.Timestamp,
		FrameLength: f.Length,
		SrcIP:       ip.SrcIP,
		DstIP:       ip.DstIP,
		TTL:         ip.TTL,
	}

	switch ip.Protocol {
	case layers.IPProtocolICMPv4:
	case layers.IPProtocolUDP:
		udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if !ok {
			return nil, errors.Wrapf(ErrNotEcho, "truncated udp")
		}
		if gtpPort == 0 || (udp.SrcPort != layers.UDPPort(gtpPort) && udp.DstPort != layers.UDPPort(gtpPort)) {
			return nil, errors.Wrapf(ErrNotEcho, "udp %v to %v", udp.SrcPort, udp.DstPort)
		}

		packet = gopacket.NewPacket(udp.Payload, layers.LayerTypeGTPv1U, decodeOptions)
		if packet.Layer(layers.LayerTypeGTPv1U) == nil {
			return nil, errors.Wrapf(ErrNotEcho, "no gtp-u header")
		}
		inner, ok := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		if !ok || inner.Protocol != layers.IPProtocolICMPv4 {
			return nil, errors.Wrapf(ErrNotEcho, "no icmp inside gtp-u")
		}
		v.Encap = EncapGTP
	default:
		return nil, errors.Wrapf(ErrNotEcho, "ip protocol %v", ip.Protocol)
	}

	icmp, ok := packet.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	if !ok {
		return nil, errors.Wrapf(ErrNotEcho, "truncated icmp")
	}

	v.Type, v.Code = icmp.TypeCode.Type(), icmp.TypeCode.Code()
	if v.Type != layers.ICMPv4TypeEchoRequest && v.Type != layers.ICMPv4TypeEchoReply {
		return nil, errors.Wrapf(ErrNotEcho, "icmp %v", icmp.TypeCode)
	}
	v.ID, v.Seq = icmp.Id, icmp.Seq
	return v, nil
}
