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

// Package analyzer turns a capture into the RTP, RTCP or ICMP CSV files. A reader
// goroutine feeds the frames through a bounded queue to the decoder, which writes
// the rows.
package analyzer

import (
	"context"
	"fmt"
	"github.com/PrincetonUniversity/Domino-IMC/capture"
	"github.com/google/gopacket/layers"
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
	"golang.org/x/sync/errgroup"
	"io"
)

// Stats are the counters of a run.
type Stats struct {
	PacketsIn uint64
	LinesOut  uint64
	Skipped   uint64

	// RTP only.
	DescriptorErrors uint64
	Structures       uint64
	// Frames whose template resolved against the last structure of the SSRC.
	Resolved   uint64
	Unresolved uint64

	// RTCP only.
	TWCCMessages uint64
	NACKMessages uint64
	RRMessages   uint64

	// ICMP only.
	EchoRequests uint64
	EchoReplies  uint64
}

func (v *Stats) String() string {
	return fmt.Sprintf("pkts in=%v, lines out=%v, skipped=%v, dd errors=%v, structures=%v, "+
		"resolved=%v, unresolved=%v, twcc msgs=%v, nack msgs=%v, rr msgs=%v, echo requests=%v, echo replies=%v",
		v.PacketsIn, v.LinesOut, v.Skipped, v.DescriptorErrors, v.Structures,
		v.Resolved, v.Unresolved, v.TWCCMessages, v.NACKMessages, v.RRMessages, v.EchoRequests, v.EchoReplies)
}

// frameHandler decodes and writes one frame, a non nil error stops the run.
type frameHandler func(ctx context.Context, f *capture.Frame, linkType layers.LinkType) error

// run reads the capture in one goroutine and calls handle in another, until the
// capture ends, ctx is done or either stage fails.
func run(ctx context.Context, input string, queueSize int, stats *Stats, handle frameHandler) error {
	r, err := capture.Open(input)
	if err != nil {
		return errors.Wrapf(err, "open %v", input)
	}
	defer r.Close()

	linkType := r.LinkType()
	logger.Tf(ctx, "Open %v, link type %v", input, linkType)

	g, ctx := errgroup.WithContext(ctx)
	frames := make(chan *capture.Frame, queueSize)

	g.Go(func() error {
		defer close(frames)

		for {
			f, err := r.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "read frame #%v", stats.PacketsIn+1)
			}
			stats.PacketsIn++

			select {
			case frames <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		for f := range frames {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := handle(ctx, f, linkType); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

// sampled limits a repeated warning to the first ones, then one per thousand.
func sampled(n uint64) bool {
	return n <= 10 || n%1000 == 0
}
