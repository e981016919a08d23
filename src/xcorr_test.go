package acq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_CrossCorrelate_recovers_known_delays builds a short (two
// wavelength) pulse burst rather than an unbounded tone: an infinite
// sinusoid is ambiguous modulo its own period under cross-correlation,
// which is why the ping truncator bounds the correlation region to
// roughly two wavelengths before cross-correlation ever runs.
func Test_CrossCorrelate_recovers_known_delays(t *testing.T) {
	const fs = 5_000_000.0
	const toneHz = 40_000.0
	const l = 2000
	const burstStart = 500
	const burstCycles = 2

	delaysSamples := [3]int{150, 300, 450} // 30000ns, 60000ns, 90000ns at 5MHz
	burstLen := int(burstCycles * fs / toneHz)

	ping := make([]Frame, l)
	writeBurst := func(channel, offset int) {
		for i := 0; i < burstLen; i++ {
			idx := offset + i
			if idx < 0 || idx >= l {
				continue
			}
			envelope := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(burstLen-1))
			t := float64(i) / fs
			ping[idx][channel] = int32(20000 * envelope * math.Sin(2*math.Pi*toneHz*t))
		}
	}

	writeBurst(0, burstStart)
	for k, d := range delaysSamples {
		writeBurst(k+1, burstStart+d)
	}

	lambda := MaxLagForGeometry(fs)
	xcorrBuf := make([]float64, XCorrBufferLen(lambda))

	result, m, err := CrossCorrelate(ping, l, xcorrBuf, fs)
	require.NoError(t, err)
	assert.Greater(t, m, 0)

	samplePeriodNs := 1e9 / fs
	for k, d := range delaysSamples {
		want := float64(d) * samplePeriodNs
		assert.InDelta(t, want, float64(result.ChannelDelayNs[k]), samplePeriodNs/2+50,
			"channel %d delay", k+1)
	}
}

func Test_CrossCorrelate_rejects_short_ping(t *testing.T) {
	xcorrBuf := make([]float64, XCorrBufferLen(MaxLagForGeometry(5_000_000)))
	_, _, err := CrossCorrelate([]Frame{{1, 2, 3, 4}}, 1, xcorrBuf, 5_000_000)
	assert.ErrorIs(t, err, ErrShortPing)
}

func Test_CrossCorrelate_rejects_small_buffer(t *testing.T) {
	ping := make([]Frame, 100)
	_, _, err := CrossCorrelate(ping, 100, make([]float64, 2), 5_000_000)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func Test_parabolicRefine_skips_at_boundary(t *testing.T) {
	corr := []float64{1, 2, 3}
	assert.Equal(t, 0.0, parabolicRefine(corr, 0))
	assert.Equal(t, 0.0, parabolicRefine(corr, len(corr)-1))
}

func Test_parabolicRefine_skips_on_zero_denominator(t *testing.T) {
	corr := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 0.0, parabolicRefine(corr, 2)) // linear ramp -> zero curvature
}
