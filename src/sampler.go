package acq

/*------------------------------------------------------------------
 *
 * Purpose:	DMA-fed four-channel sampling buffer.
 *
 * Description:	The real firmware keeps two definitions of MAX_SAMPLES
 *		with different values (45000*2200 and 5000*2200); the
 *		former is dead code left over from an earlier sample
 *		rate. We keep only the rate-consistent figure: 2.2s of
 *		headroom at the highest supported rate, 5 MHz.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
)

// MaxSamples bounds every acquisition length: 2.2s of buffer at 5 MHz,
// the highest supported sampling rate.
const MaxSamples = 5000 * 2200

// NumChannels is the number of analog hydrophone channels sampled per frame.
const NumChannels = 4

// Frame is one DMA record: four signed analog samples, channel 0 is
// the cross-correlation reference channel.
type Frame [NumChannels]int32

// ErrDMAFault indicates a hardware fault on the ADC/DMA collaborator.
// It is fatal: callers propagate it up to the reboot path.
var ErrDMAFault = errors.New("acq: DMA hardware fault")

// FrameSource is the abstract ADC+DMA collaborator. Its register
// layout, descriptor ring mechanics, and SPI bring-up are explicitly
// out of scope; only this contract is specified.
type FrameSource interface {
	// Record blocks until exactly n four-channel frames have been
	// written into buf[:n]. Returns ErrDMAFault on hardware fault;
	// there is no retry, by design.
	Record(ctx context.Context, buf []Frame, n int) error
}

// Sampler drives a FrameSource honoring the samples-per-packet
// alignment invariant.
type Sampler struct {
	Source FrameSource
}

// Record collects n frames into buf, enforcing that n is a multiple of
// samplesPerPacket and fits within buf (precondition).
func (s *Sampler) Record(ctx context.Context, buf []Frame, n, samplesPerPacket int) error {
	if samplesPerPacket <= 0 || n%samplesPerPacket != 0 {
		return errAlignment
	}
	if n > len(buf) {
		return errBufferTooSmall
	}
	if n > MaxSamples {
		return errTooManySamples
	}
	return s.Source.Record(ctx, buf, n)
}

var (
	errAlignment      = errors.New("acq: n is not a multiple of samples_per_packet")
	errBufferTooSmall = errors.New("acq: n exceeds buffer capacity")
	errTooManySamples = errors.New("acq: n exceeds MaxSamples")
)
