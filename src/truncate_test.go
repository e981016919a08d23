package acq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Truncate_locates_crossing_and_frames_window(t *testing.T) {
	var params = DefaultRuntimeParams()
	params.PingThreshold = 1000
	params.SamplesPerPacket = 10
	var fs = 5_000_000.0

	var n = 1000
	var buf = make([]Frame, n)
	var crossingIdx = 500
	buf[crossingIdx][0] = 2000

	var result = Truncate(buf, n, params, fs)

	assert.True(t, result.Located)
	assert.GreaterOrEqual(t, result.Start, 0)
	assert.Less(t, result.Start, result.End)
	assert.LessOrEqual(t, result.End, n)
	assert.GreaterOrEqual(t, crossingIdx, result.Start)
	assert.Less(t, crossingIdx, result.End)
	assert.Equal(t, 0, result.End%params.SamplesPerPacket)
}

func Test_Truncate_not_located_when_no_crossing(t *testing.T) {
	var params = DefaultRuntimeParams()
	params.PingThreshold = 1000
	var buf = make([]Frame, 100)

	var result = Truncate(buf, len(buf), params, 5_000_000.0)

	assert.False(t, result.Located)
}

func Test_Truncate_start_clamped_to_zero(t *testing.T) {
	var params = DefaultRuntimeParams()
	params.PingThreshold = 1000
	params.PrePingDuration = MicrosToTicks(1_000_000) // absurdly large pre-ping
	params.SamplesPerPacket = 1
	var buf = make([]Frame, 100)
	buf[5][0] = 2000

	var result = Truncate(buf, len(buf), params, 5_000_000.0)

	assert.True(t, result.Located)
	assert.Equal(t, 0, result.Start)
}

// Test_Truncate_zero_durations_still_yields_nonempty_window covers the
// pre_ping_duration_us:0,post_ping_duration_us:0 case: with both
// durations zero and the crossing already a multiple of
// SamplesPerPacket, the naive window collapses onto a single index.
// Start must still be strictly less than End.
func Test_Truncate_zero_durations_still_yields_nonempty_window(t *testing.T) {
	var params = DefaultRuntimeParams()
	params.PingThreshold = 1000
	params.PrePingDuration = 0
	params.PostPingDuration = 0
	params.SamplesPerPacket = 10
	var buf = make([]Frame, 1000)
	var crossingIdx = 500 // multiple of SamplesPerPacket
	buf[crossingIdx][0] = 2000

	var result = Truncate(buf, len(buf), params, 5_000_000.0)

	assert.True(t, result.Located)
	assert.Less(t, result.Start, result.End)
	assert.LessOrEqual(t, result.End, len(buf))
	assert.GreaterOrEqual(t, crossingIdx, result.Start)
	assert.Less(t, crossingIdx, result.End)
}

// Test_Truncate_zero_durations_near_buffer_end still yields a
// nonempty window that ends at or before n when the crossing sits in
// the last packet of buf (the packet round-up takes End to exactly n).
func Test_Truncate_zero_durations_near_buffer_end(t *testing.T) {
	var params = DefaultRuntimeParams()
	params.PingThreshold = 1000
	params.PrePingDuration = 0
	params.PostPingDuration = 0
	params.SamplesPerPacket = 10
	var buf = make([]Frame, 100)
	var crossingIdx = 99
	buf[crossingIdx][0] = 2000

	var result = Truncate(buf, len(buf), params, 5_000_000.0)

	assert.True(t, result.Located)
	assert.Less(t, result.Start, result.End)
	assert.LessOrEqual(t, result.End, len(buf))
}
