package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Synthetic FrameSource/ADCControl/Rebooter for bench
 *		testing without the real ADC/DMA/SPI collaborators.
 *
 * Description:	The real register layout, DMA descriptor rings, and
 *		SPI bring-up are explicitly out of scope; this is a
 *		reproducible stand-in for exercising the pipeline
 *		end-to-end, feeding a known signal instead of a live ADC.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"math"
	"math/rand"
)

// SimPingSource synthesizes a repeating ping: a 40kHz tone burst on
// channel 0, replayed on channels 1..3 with configurable per-channel
// delays, against a noise floor. It never returns ErrDMAFault.
type SimPingSource struct {
	Clock         Clock
	ToneHz        float64
	DelaysSamples [NumChannels - 1]float64 // channel k vs channel 0, in samples
	Amplitude     int32
	NoiseStddev   float64
	PingPeriod    Tick
	PingDuration  Tick

	rng        *rand.Rand
	clkDiv     int
	sppacket   int
}

func NewSimPingSource(clock Clock) *SimPingSource {
	return &SimPingSource{
		Clock:        clock,
		ToneHz:       40_000,
		Amplitude:    20000,
		NoiseStddev:  50,
		PingPeriod:   MsToTicks(2000),
		PingDuration: MicrosToTicks(500),
		rng:          rand.New(rand.NewSource(1)),
		clkDiv:       10,
		sppacket:     128,
	}
}

func (s *SimPingSource) SetClkDiv(div int)         { s.clkDiv = div }
func (s *SimPingSource) SetSamplesPerPacket(n int) { s.sppacket = n }

func (s *SimPingSource) fs() float64 {
	return float64(FPGAClockHz) / (2 * float64(s.clkDiv))
}

// Record fills buf[:n] starting at the current clock tick. Each
// channel is noise-only except during a PingDuration window once per
// PingPeriod, when channel 0 carries a ToneHz burst and channels 1..3
// carry the same burst shifted by DelaysSamples[k-1].
func (s *SimPingSource) Record(_ context.Context, buf []Frame, n int) error {
	fs := s.fs()
	startTick := s.Clock.Now()

	for i := 0; i < n; i++ {
		sampleTick := startTick + Tick(i)*Tick(CPUClockHz/fs)
		phaseInPeriod := int64(sampleTick) % int64(s.PingPeriod)

		var frame Frame
		for c := 0; c < NumChannels; c++ {
			delaySamples := 0.0
			if c > 0 {
				delaySamples = s.DelaysSamples[c-1]
			}
			t := float64(phaseInPeriod)/CPUClockHz - delaySamples/fs
			var signal float64
			if t >= 0 && Tick(t*CPUClockHz) < s.PingDuration {
				signal = float64(s.Amplitude) * math.Sin(2*math.Pi*s.ToneHz*t)
			}
			noise := s.rng.NormFloat64() * s.NoiseStddev
			frame[c] = int32(signal + noise)
		}
		buf[i] = frame
	}
	return nil
}

// SimRebooter records the reboot request (and runs OnReboot, if set)
// instead of actually restarting the process, for use in tests and
// bench simulation.
type SimRebooter struct {
	Rebooted bool
	OnReboot func()
}

func (r *SimRebooter) Reboot() {
	r.Rebooted = true
	if r.OnReboot != nil {
		r.OnReboot()
	}
}
