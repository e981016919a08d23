package acq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_MsToTicks_TicksToMs_roundtrip(t *testing.T) {
	var ticks = MsToTicks(1234)
	assert.Equal(t, int64(1234), TicksToMs(ticks))
}

func Test_MicrosToTicks_matches_pre_ping_duration(t *testing.T) {
	var ticks = MicrosToTicks(123)
	var params = DefaultRuntimeParams()
	params.PrePingDuration = MicrosToTicks(123)
	assert.Equal(t, ticks, params.PrePingDuration)
}

func Test_FakeClock_Advance(t *testing.T) {
	var clock = NewFakeClock()
	assert.Equal(t, Tick(0), clock.Now())

	clock.Advance(time.Millisecond)
	assert.Equal(t, MsToTicks(1), clock.Now())
}

func Test_TicksToSeconds(t *testing.T) {
	var ticks = MsToTicks(2000)
	assert.InDelta(t, 2.0, TicksToSeconds(ticks), 0.0001)
}
