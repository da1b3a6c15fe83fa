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

const forceQuitTimeout = 10 * time.Second

func main() {
	ctx := logger.WithContext(context.Background())
	if err := doMain(ctx); err != nil {
		logger.Ef(ctx, "Analyze icmp err %+v", err)
		os.Exit(-1)
	}
}

func doMain(ctx context.Context) error {
	var help, version bool
	var input, output, configFile string
	var gtpPort uint
	flag.BoolVar(&help, "h", false, "whether show this help")
	flag.BoolVar(&help, "help", false, "whether show this help")
	flag.BoolVar(&version, "v", false, "whether show the version")
	flag.StringVar(&input, "i", "", "the input pcap file")
	flag.StringVar(&output, "o", "", "the output csv file")
	flag.StringVar(&configFile, "c", "", "the toml config file")
	flag.UintVar(&gtpPort, "gtp", config.DefaultGTPPort, "the gtp-u udp port")

	flag.Usage = func() {
		fmt.Println(fmt.Sprintf("Usage: %v -i IN.pcap -o OUT.csv [Options]", os.Args[0]))
		fmt.Println(fmt.Sprintf("Options:"))
		fmt.Println(fmt.Sprintf("   -i      The input pcap or pcapng file."))
		fmt.Println(fmt.Sprintf("   -o      The output csv file, one row per icmp echo request or reply."))
		fmt.Println(fmt.Sprintf("   -gtp    [Optional] The gtp-u udp port, 0 to disable. Default: %v", config.DefaultGTPPort))
		fmt.Println(fmt.Sprintf("   -c      [Optional] The toml config file, overridden by the flags."))
		fmt.Println(fmt.Sprintf("   -v      [Optional] Show the version and quit."))
		fmt.Println(fmt.Sprintf("For example:"))
		fmt.Println(fmt.Sprintf("   %v -i ping.pcap -o icmp.csv", os.Args[0]))
		fmt.Println()
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}
	if version {
		fmt.Println(app.Signature("icmppkts"))
		os.Exit(0)
	}

	c, err := config.LoadICMP(configFile)
	if err != nil {
		return errors.Wrapf(err, "load config")
	}

	var invalid error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			c.Input = input
		case "o":
			c.Output = output
		case "gtp":
			if gtpPort > 0xffff {
				invalid = errors.Errorf("invalid gtp port %v", gtpPort)
			}
			c.GTPPort = uint16(gtpPort)
		}
	})
	if invalid != nil {
		return invalid
	}

	if c.Input == "" || c.Output == "" {
		flag.Usage()
		os.Exit(-1)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.InstallSignals(ctx, cancel)
	app.InstallForceQuit(ctx, forceQuitTimeout)

	logger.Tf(ctx, "%v: Analyze icmp with %v", app.Signature("icmppkts"), c)

	stats, err := analyzer.RunICMP(ctx, c)
	if stats != nil {
		logger.Tf(ctx, "Done, %v", stats)
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
