// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serial defines the line-oriented PC-to-border collaborator and
// the grammar of the one command-per-line protocol it carries.
package serial

import "fmt"

// Port is the external serial-line collaborator. Only the Border role uses
// it. Lines arrive NUL-terminated on the wire; by the time they reach this
// interface they are plain Go strings with the terminator stripped.
type Port interface {
	// SetLineCallback installs the single receiver for inbound lines. It
	// may be called at most once, during node bring-up.
	SetLineCallback(fn func(line string))
	// WriteLine writes a line of output to the PC. The Border role emits
	// its tagged BORDER/PROCESS lines through logtap and does not call
	// WriteLine.
	WriteLine(line string)
}

// Command is a parsed inbound PC command: "<type> <node> <code>", decimal,
// whitespace-separated.
type Command struct {
	Type uint8
	Node uint8
	Code uint16
}

// ParseCommandLine parses one line of the border's CLI protocol. It
// reproduces the exact grammar of the original firmware's
// sscanf("%u %u %u", ...): the line must start with three
// whitespace-separated unsigned decimal integers, with type and node at
// most 255 and code at most 65535. Anything after the third field is
// ignored, as it is by a 3-verb sscanf. Any other line is rejected
// (ok == false) and must be silently dropped by the caller.
func ParseCommandLine(line string) (cmd Command, ok bool) {
	var t, n, c uint
	consumed, err := fmt.Sscanf(line, "%d %d %d", &t, &n, &c)
	if err != nil || consumed != 3 {
		return Command{}, false
	}
	if t > 0xFF || n > 0xFF || c > 0xFFFF {
		return Command{}, false
	}
	// Trailing text after the three fields is not checked: Sscanf stops
	// once it has satisfied the verbs, just as the firmware's 3-verb
	// sscanf ignores a fourth field. No further validation needed here.
	return Command{Type: uint8(t), Node: uint8(n), Code: uint16(c)}, true
}
