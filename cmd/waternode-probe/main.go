// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// waternode-probe encodes or decodes one wire frame by hand, for bench
// testing a radio link without bringing up a full node.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"

	"waternet/frame"
)

func mainImpl() error {
	energised := flag.Bool("energised", false, "use the energised dialect instead of unaware")
	decode := flag.String("decode", "", "hex-encoded frame to decode instead of encoding one")
	kind := flag.String("type", "hello", "frame to encode: hello, sensor or command")
	rank := flag.Uint("rank", 0xFFFF, "HELLO rank (0xFFFF means unjoined)")
	battery := flag.Uint("battery", 100, "HELLO battery percent, energised only")
	state := flag.Uint("state", 0, "HELLO power state (0=active,1=lpm,2=deep-lpm), energised only")
	sourceID := flag.Uint("source", 0, "SENSOR source node id")
	value := flag.Uint("value", 0, "SENSOR reading value")
	targetID := flag.Uint("target", 0, "COMMAND target node id")
	code := flag.Uint("code", 1, "COMMAND code")
	flag.Parse()

	d := frame.Unaware
	if *energised {
		d = frame.Energised
	}

	if *decode != "" {
		buf, err := hex.DecodeString(*decode)
		if err != nil {
			return fmt.Errorf("decode hex: %w", err)
		}
		f, err := frame.Decode(d, buf)
		if err != nil {
			return err
		}
		printFrame(f)
		return nil
	}

	var buf []byte
	switch *kind {
	case "hello":
		buf = frame.EncodeHello(d, frame.Hello{
			Rank:    uint16(*rank),
			Battery: uint8(*battery),
			State:   frame.PowerState(*state),
		})
	case "sensor":
		buf = frame.EncodeSensor(frame.Sensor{SourceID: uint8(*sourceID), Value: uint16(*value)})
	case "command":
		buf = frame.EncodeCommand(frame.Command{TargetID: uint8(*targetID), Code: uint16(*code)})
	default:
		return errors.New("-type must be one of: hello, sensor, command")
	}
	fmt.Println(hex.EncodeToString(buf))
	return nil
}

func printFrame(f frame.Frame) {
	switch f.Type {
	case frame.TypeHello:
		fmt.Printf("HELLO rank=%d battery=%d state=%d\n", f.Hello.Rank, f.Hello.Battery, f.Hello.State)
	case frame.TypeSensor:
		fmt.Printf("SENSOR source=%d value=%d\n", f.Sensor.SourceID, f.Sensor.Value)
	case frame.TypeCommand:
		fmt.Printf("COMMAND target=%d code=%d\n", f.Command.TargetID, f.Command.Code)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "waternode-probe: %s.\n", err)
		os.Exit(1)
	}
}
