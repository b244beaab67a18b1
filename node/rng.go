// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package node

import "math/rand"

// DefaultRng wraps a *rand.Rand so production nodes get real randomness
// without the event loop depending on the global math/rand source — each
// node can be seeded independently, matching how a real radio_rand() would
// differ per mote.
type DefaultRng struct {
	r *rand.Rand
}

// NewDefaultRng creates a DefaultRng seeded with seed.
func NewDefaultRng(seed int64) *DefaultRng {
	return &DefaultRng{r: rand.New(rand.NewSource(seed))}
}

// Intn implements Rng.
func (d *DefaultRng) Intn(n int) int { return d.r.Intn(n) }
