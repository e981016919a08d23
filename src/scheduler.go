package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Ping-phase scheduler: the top-level state machine
 *		driving acquire -> process -> transmit, interleaved
 *		with servicing the network stack.
 *
 * Description:	Single-threaded cooperative: this goroutine is the
 *		only one that reads or writes RuntimeParams/SyncState/the
 *		sample and correlation buffers. The only suspension points
 *		are the DMA sampler's Record call and the PRE_PING
 *		busy-wait, and the busy-wait yields to the network pump
 *		on every iteration rather than spinning uninterruptibly.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"time"
)

type state int

const (
	stateDesynced state = iota
	statePredict
	statePrePing
	stateCapture
	stateProcess
)

func (s state) String() string {
	switch s {
	case stateDesynced:
		return "DESYNCED"
	case statePredict:
		return "PREDICT"
	case statePrePing:
		return "PRE_PING"
	case stateCapture:
		return "CAPTURE"
	case stateProcess:
		return "PROCESS"
	default:
		return "UNKNOWN"
	}
}

// Durations expressed as ticks via MsToTicks so arithmetic stays in
// the tick domain used throughout the pipeline.
var (
	pingPeriod        = MsToTicks(2000)
	silentGuardBefore = MsToTicks(50)
	captureWindow     = MsToTicks(300)
	silentDuration    = int32(100)
	syncWindow        = MsToTicks(2100)
	debugWindow       = MsToTicks(2100)
)

// CommandSource is the narrow contract the scheduler needs from the
// command socket, so tests can substitute an in-memory queue instead
// of a real UDP listener.
type CommandSource interface {
	Poll() (payload []byte, ok bool, err error)
}

// ResultSender is the narrow contract for transmitting one
// cross-correlation result.
type ResultSender interface {
	Send(r XCorrResult) error
}

// RawSender is the narrow contract for transmitting a raw sample
// buffer, shared by the regular and debug-stream raw transmissions.
type RawSender interface {
	Send(buf []Frame, n int) error
}

// XCorrSender is the narrow contract for transmitting a correlation
// trace buffer.
type XCorrSender interface {
	Send(xcorrBuf []float64, m int) error
}

// SilentRequester is the narrow contract for coordinating
// silent-running windows around a predicted ping.
type SilentRequester interface {
	Request(whenMs, durationMs int32) error
	Release() error
}

// Scheduler owns every mutable piece of the pipeline for the lifetime
// of the process: hardware handle, runtime parameters, sync bit,
// transport, and the buffers reused cycle to cycle.
type Scheduler struct {
	HW           *Hardware
	Params       RuntimeParams
	Sync         SyncState
	Filter       Filter
	Commands     CommandSource
	RawTx        RawSender
	XCorrTx      XCorrSender
	ResultTx     ResultSender
	SilentClient SilentRequester
	Archiver     *TraceArchiver
	Log          Logger

	dumpNext   bool
	captureLen int

	longBuf  []Frame
	shortBuf []Frame
	xcorrBuf []float64

	nextPingTick Tick
}

// NewScheduler allocates the cycle-reused buffers sized to
// MaxSamples (num_samples <= MaxSamples) and the lag-geometry bound
// from xcorr.go.
func NewScheduler(hw *Hardware, params RuntimeParams, log Logger) *Scheduler {
	lambda := MaxLagForGeometry(params.SamplingFrequencyHz())
	return &Scheduler{
		HW:       hw,
		Params:   params,
		Filter:   HighpassCascade(),
		Log:      log,
		longBuf:  make([]Frame, MaxSamples),
		shortBuf: make([]Frame, MaxSamples),
		xcorrBuf: make([]float64, XCorrBufferLen(lambda)),
	}
}

// Run drives the state machine until ctx is cancelled. Any failure in
// the hardware sampler is fatal and triggers the reboot collaborator.
func (s *Scheduler) Run(ctx context.Context) {
	st := stateDesynced

	for {
		if ctx.Err() != nil {
			return
		}

		if rebooting := s.dispatchNetworkStack(); rebooting {
			return
		}

		if s.Params.DebugStream {
			if err := s.runDebugCycle(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.handleFatal(err)
				return
			}
			continue
		}

		var err error
		st, err = s.step(ctx, st)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.handleFatal(err)
			return
		}
	}
}

// step executes exactly one state transition and returns the next
// state.
func (s *Scheduler) step(ctx context.Context, st state) (state, error) {
	switch st {
	case stateDesynced:
		return s.runSync(ctx)

	case statePredict:
		s.predictNextPing()
		return statePrePing, nil

	case statePrePing:
		return s.runPrePing(ctx)

	case stateCapture:
		if err := s.runCapture(ctx); err != nil {
			return st, err
		}
		return stateProcess, nil

	case stateProcess:
		return s.runProcess()

	default:
		return stateDesynced, nil
	}
}

// runSync performs one sync-acquisition attempt over the ~2.1s
// buffer. On failure to find a crossing it stays in DESYNCED (the
// caller's loop retries, servicing the network stack in between via
// Run's top-of-loop dispatchNetworkStack call).
func (s *Scheduler) runSync(ctx context.Context) (state, error) {
	params := s.Params.Snapshot()
	s.HW.ApplyParams(params)

	fs := params.SamplingFrequencyHz()
	n := RoundUpToPacket(int(TicksToSeconds(syncWindow)*fs), params.SamplesPerPacket)
	if n > MaxSamples {
		n = MaxSamples - (MaxSamples % max(params.SamplesPerPacket, 1))
	}

	result, err := AcquireSync(ctx, s.HW.Sampler, s.HW.Clock, s.longBuf, n, params, s.Filter)
	if err != nil {
		return stateDesynced, err
	}

	if !result.Found {
		s.Log.Infof("sync: no crossing found (peak %d, threshold %d), retrying", result.MaxValue, params.PingThreshold)
		return stateDesynced, nil
	}

	s.Sync.Set(result.PreviousPingTick)
	s.Log.Infof("sync: ping located at tick %d (peak %d)", result.PreviousPingTick, result.MaxValue)
	return statePredict, nil
}

// predictNextPing adds whole 2s ping periods to the last known ping
// tick until the predicted tick lies at least 50ms in the future.
func (s *Scheduler) predictNextPing() {
	next := s.Sync.PreviousPingTick()
	now := s.HW.Clock.Now()
	for next < now+silentGuardBefore {
		next += pingPeriod
	}
	s.nextPingTick = next
}

// runPrePing requests silent-running 50ms before the predicted tick
// and busy-waits (yielding to the network pump every iteration) until
// that deadline.
func (s *Scheduler) runPrePing(ctx context.Context) (state, error) {
	requestAt := s.nextPingTick - silentGuardBefore
	if s.SilentClient != nil {
		whenMs := int32(TicksToMs(requestAt - s.HW.Clock.Now()))
		if err := s.SilentClient.Request(whenMs, silentDuration); err != nil {
			s.Log.Warnf("silent-running: request failed: %v", err)
		}
	}

	for s.HW.Clock.Now() < requestAt {
		if ctx.Err() != nil {
			return statePrePing, ctx.Err()
		}
		if rebooting := s.dispatchNetworkStack(); rebooting {
			return statePrePing, ctx.Err()
		}
		time.Sleep(time.Millisecond)
	}

	return stateCapture, nil
}

// runCapture records the 300ms window, normalizes, and optionally
// filters.
func (s *Scheduler) runCapture(ctx context.Context) error {
	params := s.Params.Snapshot()
	s.HW.ApplyParams(params)

	fs := params.SamplingFrequencyHz()
	n := RoundUpToPacket(int(TicksToSeconds(captureWindow)*fs), params.SamplesPerPacket)

	if err := s.HW.Sampler.Record(ctx, s.shortBuf, n, params.SamplesPerPacket); err != nil {
		return err
	}

	Normalize(s.shortBuf, n)
	if params.Filter {
		s.Filter.Apply(s.shortBuf, n)
	}

	s.captureLen = n
	return nil
}

// runProcess truncates to the pulse, cross-correlates, and transmits
// the result. A truncate failure clears sync and returns to DESYNCED
// without transmitting anything.
func (s *Scheduler) runProcess() (state, error) {
	params := s.Params.Snapshot()
	fs := params.SamplingFrequencyHz()

	if s.SilentClient != nil {
		if err := s.SilentClient.Release(); err != nil {
			s.Log.Warnf("silent-running: release failed: %v", err)
		}
	}

	truncated := Truncate(s.shortBuf, s.captureLen, params, fs)
	if !truncated.Located {
		s.Sync.Clear()
		s.Log.Warnf("truncate: ping not located, desyncing")
		return stateDesynced, nil
	}

	ping := s.shortBuf[truncated.Start:truncated.End]
	l := truncated.End - truncated.Start

	result, m, err := CrossCorrelate(ping, l, s.xcorrBuf, fs)
	if err != nil {
		s.Sync.Clear()
		s.Log.Warnf("cross-correlate: %v, desyncing", err)
		return stateDesynced, nil
	}

	if err := s.ResultTx.Send(result); err != nil {
		s.Log.Warnf("transmit: result: %v", err)
	}
	if err := s.RawTx.Send(s.shortBuf, s.captureLen); err != nil {
		s.Log.Warnf("transmit: raw trace: %v", err)
	}
	if err := s.XCorrTx.Send(s.xcorrBuf, m); err != nil {
		s.Log.Warnf("transmit: xcorr trace: %v", err)
	}

	if s.dumpNext {
		s.archiveIfRequested(m)
	}

	return statePredict, nil
}

func (s *Scheduler) archiveIfRequested(m int) {
	if s.Archiver == nil {
		return
	}
	if err := s.Archiver.WriteRaw(s.shortBuf, s.captureLen); err != nil {
		s.Log.Warnf("trace archive: raw: %v", err)
	}
	if err := s.Archiver.WriteXCorr(s.xcorrBuf, m); err != nil {
		s.Log.Warnf("trace archive: xcorr: %v", err)
	}
	s.dumpNext = false
}

// runDebugCycle implements the debug_stream shortcut: skip
// PREDICT/PRE_PING/PROCESS, capture a full 2.1s window every cycle,
// and transmit it raw without truncate/correlate.
func (s *Scheduler) runDebugCycle(ctx context.Context) error {
	params := s.Params.Snapshot()
	s.HW.ApplyParams(params)

	fs := params.SamplingFrequencyHz()
	n := RoundUpToPacket(int(TicksToSeconds(debugWindow)*fs), params.SamplesPerPacket)
	if n > MaxSamples {
		n = MaxSamples - (MaxSamples % max(params.SamplesPerPacket, 1))
	}

	if err := s.HW.Sampler.Record(ctx, s.longBuf, n, params.SamplesPerPacket); err != nil {
		return err
	}

	if err := s.RawTx.Send(s.longBuf, n); err != nil {
		s.Log.Warnf("transmit: debug raw stream: %v", err)
	}
	if s.Archiver != nil {
		if err := s.Archiver.WriteRaw(s.longBuf, n); err != nil {
			s.Log.Warnf("trace archive: debug raw: %v", err)
		}
	}
	return nil
}

// dispatchNetworkStack polls the command socket, applies all
// pending datagrams, and reports whether a reboot was requested.
// Commands take effect immediately on RuntimeParams/Sync, which are
// only otherwise read at state-entry boundaries above.
func (s *Scheduler) dispatchNetworkStack() (rebooting bool) {
	if s.Commands == nil {
		return false
	}

	for {
		payload, ok, err := s.Commands.Poll()
		if err != nil {
			s.Log.Warnf("command: socket error: %v", err)
			return false
		}
		if !ok {
			return false
		}

		kvs, parseOK := ParseCommand(payload)
		if !parseOK {
			s.Log.Warnf("command: discarding over-length packet (%d bytes)", len(payload))
			continue
		}

		outcome := ApplyCommand(kvs, &s.Params, s.Log)
		if outcome.ClearSync {
			s.Sync.Clear()
		}
		if outcome.DumpNext {
			s.dumpNext = true
		}
		if outcome.Reboot {
			s.Log.Errorf("command: reset requested, rebooting")
			s.HW.Rebooter.Reboot()
			return true
		}
	}
}

func (s *Scheduler) handleFatal(err error) {
	s.Log.Errorf("fatal hardware error: %v, rebooting", err)
	s.HW.Rebooter.Reboot()
}
