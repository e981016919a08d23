package acq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_HighpassCascade_zero_input_zero_output(t *testing.T) {
	var buf = make([]Frame, 64)
	var f = HighpassCascade()
	f.Apply(buf, len(buf))

	for _, frame := range buf {
		assert.Equal(t, Frame{0, 0, 0, 0}, frame)
	}
}

func Test_HighpassCascade_linearity(t *testing.T) {
	var n = 128
	var x, y = syntheticBuffer(n, 11), syntheticBuffer(n, 29)

	var alpha, beta float64 = 2.0, -1.5

	var combined = make([]Frame, n)
	for i := 0; i < n; i++ {
		for c := 0; c < NumChannels; c++ {
			combined[i][c] = int32(alpha*float64(x[i][c]) + beta*float64(y[i][c]))
		}
	}

	var fx = append([]Frame(nil), x...)
	var fy = append([]Frame(nil), y...)
	var fCombined = append([]Frame(nil), combined...)

	f := HighpassCascade()
	f.Apply(fx, n)
	f.Apply(fy, n)
	f.Apply(fCombined, n)

	for i := 0; i < n; i++ {
		for c := 0; c < NumChannels; c++ {
			var expected = alpha*float64(fx[i][c]) + beta*float64(fy[i][c])
			assert.InDelta(t, expected, float64(fCombined[i][c]), 3) // rounding tolerance: outputs are rounded to int32 and the combined input is truncated to int32
		}
	}
}

// Test_HighpassCascade_linearity_property checks
// filter(alpha*x + beta*y) ~= alpha*filter(x) + beta*filter(y) for
// arbitrary buffers and scalars, not just one hand-picked pair.
func Test_HighpassCascade_linearity_property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "n")
		alpha := rapid.Float64Range(-3, 3).Draw(t, "alpha")
		beta := rapid.Float64Range(-3, 3).Draw(t, "beta")

		x := make([]Frame, n)
		y := make([]Frame, n)
		for i := 0; i < n; i++ {
			for c := 0; c < NumChannels; c++ {
				x[i][c] = rapid.Int32Range(-5000, 5000).Draw(t, "x")
				y[i][c] = rapid.Int32Range(-5000, 5000).Draw(t, "y")
			}
		}

		combined := make([]Frame, n)
		for i := 0; i < n; i++ {
			for c := 0; c < NumChannels; c++ {
				combined[i][c] = int32(alpha*float64(x[i][c]) + beta*float64(y[i][c]))
			}
		}

		f := HighpassCascade()
		f.Apply(x, n)
		f.Apply(y, n)
		f.Apply(combined, n)

		for i := 0; i < n; i++ {
			for c := 0; c < NumChannels; c++ {
				expected := alpha*float64(x[i][c]) + beta*float64(y[i][c])
				assert.InDelta(t, expected, float64(combined[i][c]), 3)
			}
		}
	})
}

func Test_Filter_no_sections_is_noop(t *testing.T) {
	var buf = []Frame{{10, 20, 30, 40}}
	var f Filter
	f.Apply(buf, 1)
	assert.Equal(t, Frame{10, 20, 30, 40}, buf[0])
}

func syntheticBuffer(n int, seed int32) []Frame {
	buf := make([]Frame, n)
	for i := 0; i < n; i++ {
		for c := 0; c < NumChannels; c++ {
			buf[i][c] = int32(i%7)*seed - int32(c)*3
		}
	}
	return buf
}
