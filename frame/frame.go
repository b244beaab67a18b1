// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package frame implements the wire codec for the three fixed-size frames
// exchanged over the NullNet-style broadcast link: HELLO, SENSOR and
// COMMAND.
//
// Two dialects exist, matching the two firmware variants described by the
// control plane: Unaware (no battery/power-state telemetry) and Energised
// (HELLO carries battery and power state). A build picks exactly one
// dialect; frames of the wrong dialect are rejected by length the same way
// frames of no known length are.
package frame

import "fmt"

// Dialect selects which wire layout a node decodes and encodes.
type Dialect int

const (
	// Unaware is the energy-unaware dialect: 2-byte raw-rank HELLO, 4-byte
	// {type,node,value} SENSOR/COMMAND.
	Unaware Dialect = iota
	// Energised is the battery-aware dialect: 5-byte HELLO carrying rank,
	// battery and power state, 4-byte {type,target,code} SENSOR/COMMAND.
	Energised
)

func (d Dialect) String() string {
	if d == Energised {
		return "energised"
	}
	return "unaware"
}

// Type discriminates the three frame kinds. On the wire, the Unaware
// dialect's HELLO carries no type byte and is recognised by its length
// alone; SENSOR and COMMAND carry the type as their first byte in both
// dialects. Decoded frames always carry a Type so upstream logic never
// looks at raw bytes again.
type Type uint8

const (
	TypeHello   Type = 1
	TypeSensor  Type = 2
	TypeCommand Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeHello:
		return "HELLO"
	case TypeSensor:
		return "SENSOR"
	case TypeCommand:
		return "COMMAND"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// UnjoinedRank is the sentinel rank value meaning "not yet part of the
// tree".
const UnjoinedRank uint16 = 0xFFFF

// PowerState mirrors node/power.State without importing it, so the codec
// has no dependency on the power-state machine's package.
type PowerState uint8

const (
	StateActive PowerState = iota
	StateLPM
	StateDeepLPM
)

// Hello is the decoded beacon frame.
type Hello struct {
	Rank    uint16
	Battery uint8      // only meaningful for Energised; 0 on Unaware
	State   PowerState // only meaningful for Energised; StateActive on Unaware
}

// Sensor is a decoded upstream reading.
type Sensor struct {
	SourceID uint8
	Value    uint16
}

// Command is a decoded downstream actuation command.
type Command struct {
	TargetID uint8
	Code     uint16
}

// Frame is the tagged union decoded frames are handed upstream as. Exactly
// one of Hello, Sensor, Command is non-nil, matching Type.
type Frame struct {
	Type    Type
	Hello   *Hello
	Sensor  *Sensor
	Command *Command
}

// ErrUnknownLength is returned by Decode when len(buf) doesn't match any
// frame shape for the given dialect. Per spec, this is a silent-drop
// condition at the call site, never a fatal error.
var ErrUnknownLength = fmt.Errorf("frame: length does not match any known frame for this dialect")

// EncodeHello encodes a HELLO beacon per the given dialect.
func EncodeHello(d Dialect, h Hello) []byte {
	if d == Energised {
		return []byte{
			byte(TypeHello),
			byte(h.Rank >> 8),
			byte(h.Rank),
			h.Battery,
			byte(h.State),
		}
	}
	// Unaware: 2-byte raw rank, no discriminator byte.
	return []byte{byte(h.Rank >> 8), byte(h.Rank)}
}

// EncodeSensor encodes a SENSOR reading. Both dialects use the same 4-byte
// {type, source, value_lo, value_hi} layout.
func EncodeSensor(s Sensor) []byte {
	return []byte{byte(TypeSensor), s.SourceID, byte(s.Value), byte(s.Value >> 8)}
}

// EncodeCommand encodes a COMMAND. Both dialects use the same 4-byte
// {type, target, code_lo, code_hi} layout.
func EncodeCommand(c Command) []byte {
	return []byte{byte(TypeCommand), c.TargetID, byte(c.Code), byte(c.Code >> 8)}
}

// Decode decodes an inbound frame for the given dialect. It returns
// ErrUnknownLength for any length that doesn't match a known frame; callers
// must silently drop on that error per spec.
func Decode(d Dialect, buf []byte) (Frame, error) {
	switch len(buf) {
	case 2:
		if d != Unaware {
			return Frame{}, ErrUnknownLength
		}
		rank := uint16(buf[0])<<8 | uint16(buf[1])
		return Frame{Type: TypeHello, Hello: &Hello{Rank: rank}}, nil
	case 4:
		switch buf[0] {
		case byte(TypeSensor):
			v := uint16(buf[2]) | uint16(buf[3])<<8
			return Frame{Type: TypeSensor, Sensor: &Sensor{SourceID: buf[1], Value: v}}, nil
		case byte(TypeCommand):
			c := uint16(buf[2]) | uint16(buf[3])<<8
			return Frame{Type: TypeCommand, Command: &Command{TargetID: buf[1], Code: c}}, nil
		default:
			return Frame{}, ErrUnknownLength
		}
	case 5:
		if d != Energised || buf[0] != byte(TypeHello) {
			return Frame{}, ErrUnknownLength
		}
		rank := uint16(buf[1])<<8 | uint16(buf[2])
		return Frame{Type: TypeHello, Hello: &Hello{
			Rank:    rank,
			Battery: buf[3],
			State:   PowerState(buf[4]),
		}}, nil
	default:
		return Frame{}, ErrUnknownLength
	}
}

// ClampBattery converts a floating-point battery percentage to the wire
// byte, floor()'d and clamped to [0, 255] (battery is already clamped to
// [0, 100] by the battery model, so this never actually saturates, but the
// wire format is a plain byte regardless of that upstream invariant).
func ClampBattery(battery float64) uint8 {
	if battery < 0 {
		return 0
	}
	if battery > 255 {
		return 255
	}
	return uint8(battery)
}
