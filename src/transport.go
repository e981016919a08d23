package acq

/*------------------------------------------------------------------
 *
 * Purpose:	UDP control and telemetry protocol.
 *
 * Description:	All binary payloads are little-endian, encoded with
 *		encoding/binary over UDP datagrams rather than a stream.
 *		The command listener is polled non-blockingly from the
 *		scheduler's own pump (see dispatchNetworkStack in
 *		scheduler.go), never from a separate goroutine, so
 *		RuntimeParams keeps its single-writer discipline without
 *		a lock.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"math"
	"net"
	"time"
)

// The correlation-trace stream's port isn't pinned by the upstream
// protocol description ("xcorr-stream" is named but unnumbered); we
// assign 3003, adjacent to the other telemetry ports.
const (
	CommandPort     = 3000
	DataStreamPort  = 3001
	ResultPort      = 3002
	XCorrStreamPort = 3003
	SilentReqPort   = 3004
)

// CommandListener polls the 3000/command socket without blocking the
// scheduler loop.
type CommandListener struct {
	conn *net.UDPConn
}

// NewCommandListener binds the command socket on all interfaces.
func NewCommandListener(port int) (*CommandListener, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, err
	}
	return &CommandListener{conn: conn}, nil
}

// Poll reads at most one pending datagram without blocking. It returns
// ok == false when nothing was waiting, never an error in that case.
func (c *CommandListener) Poll() (payload []byte, ok bool, err error) {
	buf := make([]byte, MaxCommandPayload+1)
	_ = c.conn.SetReadDeadline(time.Now())
	n, _, rerr := c.conn.ReadFromUDP(buf)
	if rerr != nil {
		if ne, isNet := rerr.(net.Error); isNet && ne.Timeout() {
			return nil, false, nil
		}
		return nil, false, rerr
	}
	return buf[:n], true, nil
}

func (c *CommandListener) Close() error { return c.conn.Close() }

// udpSender is the shared send-only socket used by every telemetry
// transmitter; each transmitter just differs in destination port.
type udpSender struct {
	conn *net.UDPConn
}

func newUDPSender(hostIP string, port int) (*udpSender, error) {
	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.ParseIP(hostIP), Port: port})
	if err != nil {
		return nil, err
	}
	return &udpSender{conn: conn}, nil
}

func (s *udpSender) send(b []byte) error {
	_, err := s.conn.Write(b)
	return err
}

func (s *udpSender) Close() error { return s.conn.Close() }

// ResultTransmitter pushes Result records on port 3002.
type ResultTransmitter struct{ *udpSender }

func NewResultTransmitter(hostIP string) (*ResultTransmitter, error) {
	s, err := newUDPSender(hostIP, ResultPort)
	if err != nil {
		return nil, err
	}
	return &ResultTransmitter{s}, nil
}

// Send encodes int32 channel_delay_ns[3], the reference peak sample
// index, and the sampling frequency as a float64.
func (t *ResultTransmitter) Send(r XCorrResult) error {
	buf := make([]byte, 3*4+4+8)
	for i, d := range r.ChannelDelayNs {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(d)))
	}
	binary.LittleEndian.PutUint32(buf[12:], uint32(int32(r.PeakIndex)))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(r.SamplingHz))
	return t.send(buf)
}

// RawStreamTransmitter pushes raw sample frames, channel-interleaved,
// on port 3001.
type RawStreamTransmitter struct{ *udpSender }

func NewRawStreamTransmitter(hostIP string) (*RawStreamTransmitter, error) {
	s, err := newUDPSender(hostIP, DataStreamPort)
	if err != nil {
		return nil, err
	}
	return &RawStreamTransmitter{s}, nil
}

func (t *RawStreamTransmitter) Send(buf []Frame, n int) error {
	payload := make([]byte, n*NumChannels*4)
	for i := 0; i < n; i++ {
		for c := 0; c < NumChannels; c++ {
			binary.LittleEndian.PutUint32(payload[(i*NumChannels+c)*4:], uint32(buf[i][c]))
		}
	}
	return t.send(payload)
}

// XCorrTransmitter pushes correlation frames, lag-ordered,
// channel-interleaved, on the xcorr-stream port.
type XCorrTransmitter struct{ *udpSender }

func NewXCorrTransmitter(hostIP string) (*XCorrTransmitter, error) {
	s, err := newUDPSender(hostIP, XCorrStreamPort)
	if err != nil {
		return nil, err
	}
	return &XCorrTransmitter{s}, nil
}

func (t *XCorrTransmitter) Send(xcorrBuf []float64, m int) error {
	payload := make([]byte, m*NumChannels*8)
	for i := 0; i < m*NumChannels; i++ {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(xcorrBuf[i]))
	}
	return t.send(payload)
}

// SilentRequestSender pushes the 8-byte silent-running request.
type SilentRequestSender struct{ *udpSender }

func NewSilentRequestSender(hostIP string) (*SilentRequestSender, error) {
	s, err := newUDPSender(hostIP, SilentReqPort)
	if err != nil {
		return nil, err
	}
	return &SilentRequestSender{s}, nil
}

// Send issues a request for a quiet interval (whenMs, durationMs),
// both int32, relative to the moment of send.
func (t *SilentRequestSender) Send(whenMs, durationMs int32) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:], uint32(whenMs))
	binary.LittleEndian.PutUint32(buf[4:], uint32(durationMs))
	return t.send(buf)
}
