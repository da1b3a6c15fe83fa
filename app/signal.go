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

// Package app holds what the command line tools share.
package app

import (
	"context"
	"github.com/ossrs/go-oryx-lib/logger"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// InstallSignals cancels ctx on SIGINT or SIGTERM.
func InstallSignals(ctx context.Context, cancel context.CancelFunc) {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for s := range sc {
			logger.Wf(ctx, "Quit for signal %v", s)
			cancel()
		}
	}()
}

// InstallForceQuit exits the process when it is still running timeout after ctx is
// done, for example when the output disk hangs on flush.
func InstallForceQuit(ctx context.Context, timeout time.Duration) {
	go func() {
		<-ctx.Done()
		time.Sleep(timeout)
		logger.Wf(ctx, "Force to exit by timeout %v", timeout)
		os.Exit(1)
	}()
}
