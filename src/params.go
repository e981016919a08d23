package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Single-owner runtime parameters, mutated only by the
 *		command handler and read by everyone else.
 *
 * Description:	Because the scheduler is single-threaded cooperative
 *		(see scheduler.go), no lock is required: the command
 *		handler mutates RuntimeParams in place from the same
 *		goroutine that reads it, and the scheduler only reads
 *		at state-entry boundaries (ordering, not mutual
 *		exclusion, is what matters here). A Snapshot method is
 *		provided anyway so a threaded port only has to change
 *		one call site.
 *
 *------------------------------------------------------------------*/

// RuntimeParams holds the mutable runtime configuration the command
// handler adjusts in response to control packets. Zero value is
// invalid; use DefaultRuntimeParams.
type RuntimeParams struct {
	SampleClkDiv     int // sampling frequency is FPGAClockHz / (2 * SampleClkDiv)
	SamplesPerPacket int // DMA transfer granularity
	PingThreshold    uint32
	PrePingDuration  Tick // window before threshold crossing
	PostPingDuration Tick // window after threshold crossing
	Filter           bool
	DebugStream      bool
}

// FPGAClockHz is the ADC sampling reference clock (100 MHz on the
// target SoC; the initial sample_clk_div of 10 yields a 5 MHz
// sampling rate).
const FPGAClockHz = 100_000_000

// DefaultRuntimeParams returns the parameters a freshly-booted unit
// starts with, before any control packet has been applied.
func DefaultRuntimeParams() RuntimeParams {
	return RuntimeParams{
		SampleClkDiv:     10,
		SamplesPerPacket: 128,
		PingThreshold:    1500,
		PrePingDuration:  MicrosToTicks(100),
		PostPingDuration: MicrosToTicks(50),
		Filter:           false,
		DebugStream:      false,
	}
}

// SamplingFrequencyHz returns fpga_clk / (2 * sample_clk_div).
func (p RuntimeParams) SamplingFrequencyHz() float64 {
	return float64(FPGAClockHz) / (2 * float64(p.SampleClkDiv))
}

// Snapshot returns a copy safe to use for the duration of one
// acquire/process/transmit cycle without observing a mid-cycle write
// from the command handler.
func (p *RuntimeParams) Snapshot() RuntimeParams {
	return *p
}

// RoundUpToPacket rounds n up to the next multiple of samplesPerPacket,
// enforcing that every acquisition length is an exact multiple of the
// DMA transfer granularity (samples_per_packet * k == num_samples).
func RoundUpToPacket(n, samplesPerPacket int) int {
	if samplesPerPacket <= 0 {
		return n
	}
	rem := n % samplesPerPacket
	if rem == 0 {
		return n
	}
	return n + (samplesPerPacket - rem)
}

// SyncState is the latched "last ping located" bit the scheduler
// consults to decide whether it can predict the next ping arrival
// or must fall back to a full threshold scan.
type SyncState struct {
	synced           bool
	previousPingTick Tick
}

func (s *SyncState) Set(tick Tick) {
	s.synced = true
	s.previousPingTick = tick
}

func (s *SyncState) Clear() {
	s.synced = false
}

func (s *SyncState) Synced() bool { return s.synced }

func (s *SyncState) PreviousPingTick() Tick { return s.previousPingTick }
