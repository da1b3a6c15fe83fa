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
	"github.com/PrincetonUniversity/Domino-IMC/av1"
	"github.com/PrincetonUniversity/Domino-IMC/capture"
	"github.com/PrincetonUniversity/Domino-IMC/config"
	"github.com/PrincetonUniversity/Domino-IMC/report"
	"github.com/PrincetonUniversity/Domino-IMC/rtc"
	"github.com/google/gopacket/layers"
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
)

// RunRTP writes one row per RTP packet of the capture. The stats are returned
// even when the run fails or is cancelled, with the rows so far flushed.
func RunRTP(ctx context.Context, c *config.RTPConfig) (*Stats, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validate")
	}

	w, err := report.CreateRTP(c.Output)
	if err != nil {
		return nil, errors.Wrapf(err, "create output")
	}

	stats := &Stats{}
	h := &rtpHandler{
		ids: rtc.ExtensionIDs{
			TransportCC:          c.Extensions.TransportCC,
			AbsSendTime:          c.Extensions.AbsSendTime,
			DependencyDescriptor: c.Extensions.DependencyDescriptor,
		},
		gtpPort:    c.GTPPort,
		w:          w,
		stats:      stats,
		structures: make(map[uint32]*av1.DependencyDescriptor),
	}

	err = run(ctx, c.Input, c.QueueSize, stats, h.handle)

	stats.LinesOut = uint64(w.Lines())
	if r0 := w.Close(); r0 != nil && err == nil {
		err = errors.Wrapf(r0, "close %v", c.Output)
	}
	return stats, err
}

type rtpHandler struct {
	ids     rtc.ExtensionIDs
	gtpPort uint16
	w       *report.RTPWriter
	stats   *Stats
	// The last descriptor with a template structure, per SSRC.
	structures map[uint32]*av1.DependencyDescriptor
}

func (v *rtpHandler) handle(ctx context.Context, f *capture.Frame, linkType layers.LinkType) error {
	d, err := capture.Decode(f, linkType, v.gtpPort)
	if err != nil {
		v.stats.Skipped++
		return nil
	}

	p, err := rtc.ParseRTP(d.Payload, v.ids)
	if err != nil {
		v.stats.Skipped++
		return nil
	}

	if p.DescriptorErr != nil {
		if v.stats.DescriptorErrors++; sampled(v.stats.DescriptorErrors) {
			logger.Wf(ctx, "Ignore descriptor #%v err %+v", v.stats.DescriptorErrors, p.DescriptorErr)
		}
	}
	if p.Descriptor != nil {
		v.resolve(ctx, p)
	}

	if err := v.w.WriteRTP(d, p); err != nil {
		return errors.Wrapf(err, "write ssrc %v seq %v", p.SSRC, p.SequenceNumber)
	}
	return nil
}

// resolve keeps the template structure of the SSRC, and finds the template of the
// frame in it.
func (v *rtpHandler) resolve(ctx context.Context, p *rtc.RTPInfo) {
	dd := p.Descriptor
	if dd.HasTemplateStructure() {
		v.stats.Structures++
		v.structures[p.SSRC] = dd
		logStructure(ctx, p.SSRC, dd)
	}

	last, ok := v.structures[p.SSRC]
	if !ok {
		v.stats.Unresolved++
		return
	}

	if _, _, err := dd.FrameTemplate(last.Structure); err != nil {
		if v.stats.Unresolved++; sampled(v.stats.Unresolved) {
			logger.Wf(ctx, "No template for ssrc %v seq %v, %v, err %+v", p.SSRC, p.SequenceNumber, dd, err)
		}
		return
	}
	v.stats.Resolved++
}

func logStructure(ctx context.Context, ssrc uint32, dd *av1.DependencyDescriptor) {
	logger.Tf(ctx, "ssrc %v av1_dd: %v", ssrc, dd)

	s := dd.Structure
	for _, id := range s.TemplateIDs() {
		t, _ := s.Template(id)
		logger.Tf(ctx, "  - id=%v, %v", id, t)
	}
}
