package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Cascaded biquad (direct-form II transposed) highpass,
 *		applied independently per channel.
 *
 * Description:	Coefficients are six per section, (b0,b1,b2,a0,a1,a2)
 *		with a0 == 1 always (the division is elided). Delay
 *		state (z1, z2) is zeroed at the start of every buffer;
 *		there is no carry-over between calls, matching the
 *		firmware's per-cycle buffer ownership.
 *
 *------------------------------------------------------------------*/

import "math"

// Section is one second-order IIR stage. A0 is carried for
// documentation only; callers must not rely on it being anything but 1.
type Section struct {
	B0, B1, B2 float64
	A0, A1, A2 float64
}

// Filter is an ordered cascade of sections applied in series.
type Filter []Section

// HighpassCascade is the 5-section Butterworth-like highpass used at
// the target sampling rate. Coefficients are bit-exact with the
// firmware's configuration; do not "simplify" them.
func HighpassCascade() Filter {
	return Filter{
		{B0: 0.976572753292004, B1: -1.953145506584008, B2: 0.976572753292004, A0: 1, A1: -1.998354115074282, A2: 0.998926104509836},
		{B0: 0.975206721477597, B1: -1.950413442955194, B2: 0.975206721477597, A0: 1, A1: -1.995495119158081, A2: 0.996193697294377},
		{B0: 0.972451482822301, B1: -1.944902965644602, B2: 0.972451482822301, A0: 1, A1: -1.989660620860693, A2: 0.990750529959661},
		{B0: 0.963669622248601, B1: -1.927339244497202, B2: 0.963669622248601, A0: 1, A1: -1.970992420143032, A2: 0.973473065140308},
		{B0: 0.906313647059524, B1: -1.812627294119048, B2: 0.906313647059524, A0: 1, A1: -1.848974099452832, A2: 0.860723515924862},
	}
}

// delayState is one section's (z1, z2) pair for one channel.
type delayState struct {
	z1, z2 float64
}

// biquad applies one direct-form-II-transposed section to a single
// sample, updating state in place.
func (sec Section) biquad(x float64, st *delayState) float64 {
	y := sec.B0*x + st.z1
	st.z1 = sec.B1*x - sec.A1*y + st.z2
	st.z2 = sec.B2*x - sec.A2*y
	return y
}

// Apply runs the cascade over buf[:n], independently per channel,
// clamping the final value back to the int32 sample representation.
func (f Filter) Apply(buf []Frame, n int) {
	if len(f) == 0 || n == 0 {
		return
	}

	var state [NumChannels][]delayState
	for c := range state {
		state[c] = make([]delayState, len(f))
	}

	for i := 0; i < n; i++ {
		for c := 0; c < NumChannels; c++ {
			x := float64(buf[i][c])
			for s := range f {
				x = f[s].biquad(x, &state[c][s])
			}
			buf[i][c] = clampSample(x)
		}
	}
}

func clampSample(x float64) int32 {
	switch {
	case x > math.MaxInt32:
		return math.MaxInt32
	case x < math.MinInt32:
		return math.MinInt32
	default:
		return int32(math.Round(x))
	}
}
