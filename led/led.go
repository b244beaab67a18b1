// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package led defines the LED driver external collaborator. Sensor nodes
// use the red LED as the user-visible valve-open indicator.
package led

// Color identifies which LED to drive. Only Red is used by this control
// plane (the valve indicator); the type exists so a real board's LED
// driver, which usually exposes more than one LED, can be adapted to this
// interface without the control plane caring about the others.
type Color int

const (
	Red Color = iota
)

// LED is the external LED-driver collaborator.
type LED interface {
	On(c Color)
	Off(c Color)
}
