// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serialtest implements a fake for package serial: a port a test
// can feed lines into and read printed output back from.
package serialtest

// Fake is a serial.Port backed by an in-memory queue of output lines and a
// callback the test drives with Feed.
type Fake struct {
	Output []string
	fn     func(line string)
}

// SetLineCallback implements serial.Port.
func (f *Fake) SetLineCallback(fn func(line string)) { f.fn = fn }

// WriteLine implements serial.Port.
func (f *Fake) WriteLine(line string) { f.Output = append(f.Output, line) }

// Feed delivers one inbound line to the installed callback, simulating a
// PC command arriving over the wire.
func (f *Fake) Feed(line string) {
	if f.fn != nil {
		f.fn(line)
	}
}
