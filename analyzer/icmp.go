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
package analyzer

import (
	"context"
	"github.com/PrincetonUniversity/Domino-IMC/capture"
	"github.com/PrincetonUniversity/Domino-IMC/config"
	"github.com/PrincetonUniversity/Domino-IMC/report"
	"github.com/google/gopacket/layers"
	"github.com/ossrs/go-oryx-lib/errors"
)

// RunICMP writes a row per ICMP echo request or reply, direct or tunneled in
// GTP-U. The stats are returned even when the run fails or is cancelled.
func RunICMP(ctx context.Context, c *config.ICMPConfig) (*Stats, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validate")
	}

	w, err := report.CreateICMP(c.Output)
	if err != nil {
		return nil, errors.Wrapf(err, "create output")
	}

	stats := &Stats{}
	h := &icmpHandler{gtpPort: c.GTPPort, w: w, stats: stats}

	err = run(ctx, c.Input, c.QueueSize, stats, h.handle)

	stats.LinesOut = uint64(w.Lines())
	if r0 := w.Close(); r0 != nil && err == nil {
		err = errors.Wrapf(r0, "close output")
	}
	return stats, err
}

type icmpHandler struct {
	gtpPort uint16
	w       *report.ICMPWriter
	stats   *Stats
}

func (v *icmpHandler) handle(ctx context.Context, f *capture.Frame, linkType layers.LinkType) error {
	e, err := capture.DecodeEcho(f, linkType, v.gtpPort)
	if err != nil {
		v.stats.Skipped++
		return nil
	}

	if e.Type == layers.ICMPv4TypeEchoRequest {
		v.stats.EchoRequests++
	} else {
		v.stats.EchoReplies++
	}

	if err := v.w.WriteEcho(e); err != nil {
		return errors.Wrapf(err, "write echo")
	}
	return nil
}
