// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ledtest implements a fake for package led that a test can
// inspect for on/off state and full history.
package ledtest

import "waternet/led"

// Record is a led.LED fake recording every On/Off call and the current
// state of each color.
type Record struct {
	Lit     map[led.Color]bool
	History []Event
}

// Event is one On/Off call observed by Record.
type Event struct {
	Color led.Color
	On    bool
}

// NewRecord creates an empty Record with all LEDs off.
func NewRecord() *Record {
	return &Record{Lit: map[led.Color]bool{}}
}

// On implements led.LED.
func (r *Record) On(c led.Color) {
	r.Lit[c] = true
	r.History = append(r.History, Event{Color: c, On: true})
}

// Off implements led.LED.
func (r *Record) Off(c led.Color) {
	r.Lit[c] = false
	r.History = append(r.History, Event{Color: c, On: false})
}

// IsOn reports whether c is currently lit.
func (r *Record) IsOn(c led.Color) bool { return r.Lit[c] }
