package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Archive raw and correlation traces to timestamped files,
 *		independent of the live UDP stream.
 *
 * Description:	Uses a timestamped file-name convention applied to binary DSP
 *		traces rather than decoded-packet CSV rows, and formats
 *		file names with github.com/lestrrat-go/strftime.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
)

// TraceArchiver writes raw/correlation buffers to a directory on
// request. A zero-value TraceArchiver with Dir == "" is a no-op.
type TraceArchiver struct {
	Dir           string
	NamePattern   string // strftime pattern, e.g. "ping-%Y%m%d-%H%M%S"
	nowForTesting func() time.Time
}

// NewTraceArchiver returns an archiver writing into dir with the given
// strftime file name pattern.
func NewTraceArchiver(dir, namePattern string) *TraceArchiver {
	return &TraceArchiver{Dir: dir, NamePattern: namePattern}
}

func (a *TraceArchiver) now() time.Time {
	if a.nowForTesting != nil {
		return a.nowForTesting()
	}
	return time.Now()
}

// WriteRaw writes buf[:n] as raw little-endian int32 frames to
// "<pattern>.raw" under Dir.
func (a *TraceArchiver) WriteRaw(buf []Frame, n int) error {
	if a.Dir == "" {
		return nil
	}
	path, err := a.path(".raw")
	if err != nil {
		return err
	}

	payload := make([]byte, n*NumChannels*4)
	for i := 0; i < n; i++ {
		for c := 0; c < NumChannels; c++ {
			binary.LittleEndian.PutUint32(payload[(i*NumChannels+c)*4:], uint32(buf[i][c]))
		}
	}
	return os.WriteFile(path, payload, 0o644)
}

// WriteXCorr writes xcorrBuf[:m*NumChannels] as little-endian float64
// lag bins to "<pattern>.xcorr" under Dir.
func (a *TraceArchiver) WriteXCorr(xcorrBuf []float64, m int) error {
	if a.Dir == "" {
		return nil
	}
	path, err := a.path(".xcorr")
	if err != nil {
		return err
	}

	payload := make([]byte, m*NumChannels*8)
	for i := 0; i < m*NumChannels; i++ {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(xcorrBuf[i]))
	}
	return os.WriteFile(path, payload, 0o644)
}

func (a *TraceArchiver) path(suffix string) (string, error) {
	pattern := a.NamePattern
	if pattern == "" {
		pattern = "ping-%Y%m%d-%H%M%S"
	}
	formatted, err := strftime.Format(pattern, a.now())
	if err != nil {
		return "", fmt.Errorf("acq: formatting trace file name: %w", err)
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(a.Dir, formatted+suffix), nil
}
