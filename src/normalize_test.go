package acq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_Normalize_removes_dc_bias(t *testing.T) {
	var buf = []Frame{
		{1000, 2000, 3000, 4000},
		{1010, 2010, 3010, 4010},
		{1020, 2020, 3020, 4020},
	}

	Normalize(buf, len(buf))

	for c := 0; c < NumChannels; c++ {
		var sum int64
		for i := range buf {
			sum += int64(buf[i][c])
		}
		assert.InDelta(t, 0, sum, float64(len(buf))) // within one-LSB-per-sample tolerance
	}
}

func Test_Normalize_idempotent(t *testing.T) {
	var buf = []Frame{
		{100, -50, 25, 0},
		{110, -40, 35, 10},
		{90, -60, 15, -10},
	}

	Normalize(buf, len(buf))
	var once = append([]Frame(nil), buf...)

	Normalize(buf, len(buf))

	for i := range buf {
		for c := 0; c < NumChannels; c++ {
			assert.InDelta(t, once[i][c], buf[i][c], 1) // one-LSB tolerance
		}
	}
}

func Test_Normalize_zero_n_is_noop(t *testing.T) {
	var buf = []Frame{{1, 2, 3, 4}}
	Normalize(buf, 0)
	assert.Equal(t, Frame{1, 2, 3, 4}, buf[0])
}

// Test_Normalize_idempotent_property checks normalize(normalize(buf))
// == normalize(buf) (within a one-LSB tolerance) for arbitrary buffers,
// not just the hand-picked fixtures above.
func Test_Normalize_idempotent_property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "n")
		buf := make([]Frame, n)
		for i := range buf {
			for c := 0; c < NumChannels; c++ {
				buf[i][c] = rapid.Int32Range(-100000, 100000).Draw(t, "sample")
			}
		}

		Normalize(buf, n)
		once := append([]Frame(nil), buf...)
		Normalize(buf, n)

		for i := range buf {
			for c := 0; c < NumChannels; c++ {
				assert.InDelta(t, once[i][c], buf[i][c], 1)
			}
		}
	})
}
