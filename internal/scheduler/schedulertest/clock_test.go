// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package schedulertest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_AdvanceDeliversDueTicks(t *testing.T) {
	c := NewClock()
	start := c.Now()
	tk := c.NewTicker(time.Second)

	c.Advance(500 * time.Millisecond)
	select {
	case <-tk.C():
		t.Fatal("tick delivered before the period elapsed")
	default:
	}

	c.Advance(500 * time.Millisecond)
	select {
	case at := <-tk.C():
		assert.Equal(t, start.Add(time.Second), at)
	default:
		t.Fatal("expected a tick after one period")
	}
}

func TestClock_DropsTickWhenUnread(t *testing.T) {
	c := NewClock()
	tk := c.NewTicker(time.Second)

	c.Advance(time.Second)
	c.Advance(time.Second)

	require.Len(t, tk.C(), 1)
	<-tk.C()
	assert.Empty(t, tk.C())
}

func TestClock_StoppedTickersArePruned(t *testing.T) {
	c := NewClock()
	a := c.NewTicker(time.Second)
	c.NewTicker(time.Second)
	assert.Equal(t, 2, c.Tickers())

	a.Stop()
	c.Advance(time.Second)
	assert.Equal(t, 1, c.Tickers())
	assert.Empty(t, a.C())
}
