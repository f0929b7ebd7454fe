// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededRand_IsReproducible(t *testing.T) {
	a, b := NewSeededRand(42), NewSeededRand(42)
	for range 10 {
		assert.Equal(t, a.IntN(100), b.IntN(100))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDefaultRand_Ranges(t *testing.T) {
	r := DefaultRand()
	for range 100 {
		f := r.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)

		n := r.IntN(5)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 5)
	}
}
