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
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/PrincetonUniversity/Domino-IMC/analyzer"
	"github.com/PrincetonUniversity/Domino-IMC/app"
	"github.com/PrincetonUniversity/Domino-IMC/config"
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
	"os"
	"time"
)

// The pipeline flushes and stops well within this after a signal.
const forceQuitTimeout = 10 * time.Second

func main() {
	ctx := logger.WithContext(context.Background())
	if err := doMain(ctx); err != nil {
		logger.Ef(ctx, "Analyze rtp err %+v", err)
		os.Exit(-1)
	}
}

func doMain(ctx context.Context) error {
	var help, version bool
	var input, output, configFile string
	var twcc, absSendTime, av1DD, gtpPort uint
	flag.BoolVar(&help, "h", false, "whether show this help")
	flag.BoolVar(&help, "help", false, "whether show this help")
	flag.BoolVar(&version, "v", false, "whether show the version")
	flag.StringVar(&input, "i", "", "the input pcap file")
	flag.StringVar(&output, "o", "", "the output csv file")
	flag.StringVar(&configFile, "c", "", "the toml config file")
	flag.UintVar(&twcc, "t", config.DefaultTransportCC, "the transport-cc rtp extension id")
	flag.UintVar(&absSendTime, "s", config.DefaultAbsSendTime, "the abs-send-time rtp extension id")
	flag.UintVar(&av1DD, "a", config.DefaultDependencyDescriptor, "the av1 dependency descriptor rtp extension id")
	flag.UintVar(&gtpPort, "gtp", config.DefaultGTPPort, "the gtp-u udp port")

	flag.Usage = func() {
		fmt.Println(fmt.Sprintf("Usage: %v -i IN.pcap -o OUT.csv [Options]", os.Args[0]))
		fmt.Println(fmt.Sprintf("Options:"))
		fmt.Println(fmt.Sprintf("   -i      The input pcap or pcapng file."))
		fmt.Println(fmt.Sprintf("   -o      The output csv file, one row per rtp packet."))
		fmt.Println(fmt.Sprintf("   -t      [Optional] The transport-cc rtp extension id, 0 to disable. Default: %v", config.DefaultTransportCC))
		fmt.Println(fmt.Sprintf("   -s      [Optional] The abs-send-time rtp extension id, 0 to disable. Default: %v", config.DefaultAbsSendTime))
		fmt.Println(fmt.Sprintf("   -a      [Optional] The av1 dependency descriptor rtp extension id, 0 to disable. Default: %v", config.DefaultDependencyDescriptor))
		fmt.Println(fmt.Sprintf("   -gtp    [Optional] The gtp-u udp port, 0 to disable. Default: %v", config.DefaultGTPPort))
		fmt.Println(fmt.Sprintf("   -c      [Optional] The toml config file, overridden by the flags."))
		fmt.Println(fmt.Sprintf("   -v      [Optional] Show the version and quit."))
		fmt.Println(fmt.Sprintf("For example:"))
		fmt.Println(fmt.Sprintf("   %v -i webrtc.pcap -o rtp.csv", os.Args[0]))
		fmt.Println(fmt.Sprintf("   %v -i webrtc.pcap -o rtp.csv -a 11 -gtp 0", os.Args[0]))
		fmt.Println()
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}
	if version {
		fmt.Println(app.Signature("rtppkts"))
		os.Exit(0)
	}

	c, err := config.LoadRTP(configFile)
	if err != nil {
		return errors.Wrapf(err, "load config")
	}

	var overflow error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			c.Input = input
		case "o":
			c.Output = output
		case "t":
			c.Extensions.TransportCC, overflow = extensionID(f.Name, twcc, overflow)
		case "s":
			c.Extensions.AbsSendTime, overflow = extensionID(f.Name, absSendTime, overflow)
		case "a":
			c.Extensions.DependencyDescriptor, overflow = extensionID(f.Name, av1DD, overflow)
		case "gtp":
			if gtpPort > 0xffff && overflow == nil {
				overflow = errors.Errorf("invalid gtp port %v", gtpPort)
			}
			c.GTPPort = uint16(gtpPort)
		}
	})
	if overflow != nil {
		return overflow
	}

	if c.Input == "" || c.Output == "" {
		flag.Usage()
		os.Exit(-1)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.InstallSignals(ctx, cancel)
	app.InstallForceQuit(ctx, forceQuitTimeout)

	logger.Tf(ctx, "%v: Analyze rtp with %v", app.Signature("rtppkts"), c)

	stats, err := analyzer.RunRTP(ctx, c)
	if stats != nil {
		logger.Tf(ctx, "Done, wrote %v lines to %v, %v", stats.LinesOut, c.Output, stats)
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func extensionID(name string, id uint, overflow error) (uint8, error) {
	if id > 0xff && overflow == nil {
		overflow = errors.Errorf("invalid extension id %v=%v", name, id)
	}
	return uint8(id), overflow
}
