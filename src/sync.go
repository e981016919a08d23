package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Scan a long (~2.1s) buffer for the first ping crossing
 *		and timestamp it.
 *
 * Description:	Records the buffer fresh (no carry-over from a prior
 *		attempt), optionally filters it, then scans channel 0
 *		for the first absolute-value sample strictly exceeding
 *		ping_threshold. If nothing crosses, the caller retries
 *		the whole window while continuing to service the
 *		network stack between attempts; that retry loop lives
 *		in the scheduler, not here.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"math"
)

// SyncResult is the outcome of one acquire-sync attempt.
type SyncResult struct {
	Found            bool
	MaxValue         uint32 // peak magnitude observed, for operator feedback
	PreviousPingTick Tick
	CrossingIndex    int
}

// AcquireSync records n frames at samplingFreq starting at
// acquisitionStartTick, optionally filters them, and looks for the
// first ping crossing on channel 0.
func AcquireSync(
	ctx context.Context,
	sampler *Sampler,
	clk Clock,
	buf []Frame,
	n int,
	params RuntimeParams,
	filter Filter,
) (SyncResult, error) {
	acquisitionStartTick := clk.Now()

	if err := sampler.Record(ctx, buf, n, params.SamplesPerPacket); err != nil {
		return SyncResult{}, err
	}

	if params.Filter {
		filter.Apply(buf, n)
	}

	var result SyncResult
	var maxVal uint32

	for i := 0; i < n; i++ {
		mag := absInt32(buf[i][0])
		if mag > maxVal {
			maxVal = mag
		}
		if !result.Found && mag > params.PingThreshold {
			result.Found = true
			result.CrossingIndex = i
		}
	}

	result.MaxValue = maxVal

	if result.Found {
		ticksPerSample := Tick(CPUClockHz / params.SamplingFrequencyHz())
		result.PreviousPingTick = acquisitionStartTick + Tick(result.CrossingIndex)*ticksPerSample
	}

	return result, nil
}

func absInt32(v int32) uint32 {
	if v < 0 {
		if v == math.MinInt32 {
			return uint32(math.MaxInt32) + 1
		}
		return uint32(-v)
	}
	return uint32(v)
}
