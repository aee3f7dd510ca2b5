package ags10

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayFunc(t *testing.T) {
	var got []time.Duration
	var d Delayer = DelayFunc(func(d time.Duration) { got = append(got, d) })
	d.Delay(30 * time.Millisecond)
	d.Delay(time.Second)
	assert.Equal(t, []time.Duration{30 * time.Millisecond, time.Second}, got)
}

func TestSleepDelayer(t *testing.T) {
	start := time.Now()
	SleepDelayer.Delay(20 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestVerboseContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsVerbose(ctx))
	assert.True(t, IsVerbose(WithVerbose(ctx, true)))
	assert.False(t, IsVerbose(WithVerbose(ctx, false)))
}
