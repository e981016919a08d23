/*------------------------------------------------------------------
 *
 * Purpose:	Quick test program for generating a synthetic
 *		four-channel ping waveform with known inter-channel
 *		delays, for exercising cross-correlation offline.
 *
 * Description:	A small standalone generator used to feed a known
 *		signal through the pipeline under controlled, reproducible
 *		conditions. It drives SimPingSource and dumps raw frames.
 *
 *------------------------------------------------------------------*/
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/hydrozynq/abyssal/src"
)

func main() {
	var (
		out       = pflag.StringP("out", "o", "ping.raw", "output file for raw little-endian int32 frames")
		numFrames = pflag.IntP("frames", "n", 1_500_000, "number of frames to generate (300ms at 5MHz)")
		delay1Ns  = pflag.Int64("delay1-ns", 30000, "channel 1 vs channel 0 delay, nanoseconds")
		delay2Ns  = pflag.Int64("delay2-ns", 60000, "channel 2 vs channel 0 delay, nanoseconds")
		delay3Ns  = pflag.Int64("delay3-ns", 90000, "channel 3 vs channel 0 delay, nanoseconds")
		clkDiv    = pflag.Int("clk-div", 10, "sample_clk_div, sampling freq = fpga_clk/(2*div)")
	)
	pflag.Parse()

	clock := acq.NewFakeClock()
	sim := acq.NewSimPingSource(clock)
	sim.SetClkDiv(*clkDiv)

	fs := float64(acq.FPGAClockHz) / (2 * float64(*clkDiv))
	sim.DelaysSamples[0] = nsToSamples(*delay1Ns, fs)
	sim.DelaysSamples[1] = nsToSamples(*delay2Ns, fs)
	sim.DelaysSamples[2] = nsToSamples(*delay3Ns, fs)

	buf := make([]acq.Frame, *numFrames)
	if err := sim.Record(context.Background(), buf, *numFrames); err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create:", err)
		os.Exit(1)
	}
	defer f.Close()

	payload := make([]byte, len(buf)*acq.NumChannels*4)
	for i, frame := range buf {
		for c := 0; c < acq.NumChannels; c++ {
			binary.LittleEndian.PutUint32(payload[(i*acq.NumChannels+c)*4:], uint32(frame[c]))
		}
	}
	if _, err := f.Write(payload); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d frames (%d bytes) to %s, fs=%.0fHz\n", len(buf), len(payload), *out, fs)
}

func nsToSamples(ns int64, fs float64) float64 {
	return float64(ns) * fs / 1e9
}
