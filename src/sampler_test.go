package acq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFrameSource struct {
	calls int
	err   error
}

func (f *fakeFrameSource) Record(ctx context.Context, buf []Frame, n int) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for i := 0; i < n; i++ {
		buf[i] = Frame{1, 2, 3, 4}
	}
	return nil
}

func Test_Sampler_Record_rejects_misaligned_n(t *testing.T) {
	src := &fakeFrameSource{}
	s := Sampler{Source: src}
	buf := make([]Frame, 100)

	err := s.Record(context.Background(), buf, 10, 3)

	require.Error(t, err)
	assert.Equal(t, 0, src.calls)
}

func Test_Sampler_Record_rejects_n_larger_than_buffer(t *testing.T) {
	src := &fakeFrameSource{}
	s := Sampler{Source: src}
	buf := make([]Frame, 5)

	err := s.Record(context.Background(), buf, 10, 5)

	require.Error(t, err)
	assert.Equal(t, 0, src.calls)
}

func Test_Sampler_Record_rejects_n_over_MaxSamples(t *testing.T) {
	src := &fakeFrameSource{}
	s := Sampler{Source: src}
	buf := make([]Frame, MaxSamples+10)

	err := s.Record(context.Background(), buf, MaxSamples+10, 10)

	require.Error(t, err)
	assert.Equal(t, 0, src.calls)
}

func Test_Sampler_Record_delegates_on_valid_request(t *testing.T) {
	src := &fakeFrameSource{}
	s := Sampler{Source: src}
	buf := make([]Frame, 20)

	err := s.Record(context.Background(), buf, 20, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, Frame{1, 2, 3, 4}, buf[0])
}

func Test_Sampler_Record_propagates_DMA_fault(t *testing.T) {
	src := &fakeFrameSource{err: ErrDMAFault}
	s := Sampler{Source: src}
	buf := make([]Frame, 10)

	err := s.Record(context.Background(), buf, 10, 5)

	assert.ErrorIs(t, err, ErrDMAFault)
}
