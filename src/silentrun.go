package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Coordinate with the vehicle-wide silent-running
 *		service before each predicted ping.
 *
 * Description:	The primary channel is the UDP silent-request datagram.
 *		Some vehicles additionally watch a hardware interlock
 *		line rather than trusting the network path; we optionally
 *		drive one using warthog618/go-gpiocdev, a character-device
 *		GPIO library for Linux targets. Wiring the line never
 *		changes program semantics, it is a redundant signal:
 *		asserted at the moment the UDP request is sent (ahead of
 *		the quiet window itself) and released by Release once the
 *		capture is over.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// SilentRunningClient issues the request over UDP and, if a GPIO line
// is configured, asserts a physical interlock in parallel.
type SilentRunningClient struct {
	sender *SilentRequestSender
	line   *gpiocdev.Line // nil if no GPIO interlock is configured
}

// NewSilentRunningClient wires the UDP sender. Call WithGPIOLine
// afterward to add the hardware interlock.
func NewSilentRunningClient(sender *SilentRequestSender) *SilentRunningClient {
	return &SilentRunningClient{sender: sender}
}

// WithGPIOLine requests an output line on chip (e.g. "gpiochip0"),
// offset, initially released (logic high = thrusters permitted).
func (c *SilentRunningClient) WithGPIOLine(chip string, offset int) error {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(1))
	if err != nil {
		return fmt.Errorf("acq: silent-running GPIO interlock: %w", err)
	}
	c.line = line
	return nil
}

// Request sends the UDP silent-request datagram and, if wired, asserts
// the GPIO interlock. whenMs/durationMs are both relative to the
// moment of send.
func (c *SilentRunningClient) Request(whenMs, durationMs int32) error {
	if err := c.sender.Send(whenMs, durationMs); err != nil {
		return err
	}
	if c.line != nil {
		// Best-effort: a GPIO interlock failure does not block the UDP
		// request from having gone out, so it is logged by the caller
		// rather than propagated as a cycle-ending error.
		_ = c.line.SetValue(0)
	}
	return nil
}

// Release de-asserts the GPIO interlock; the scheduler calls it once the
// capture window is over, whether or not the ping is then located.
// No-op if no GPIO line is configured.
func (c *SilentRunningClient) Release() error {
	if c.line == nil {
		return nil
	}
	return c.line.SetValue(1)
}

func (c *SilentRunningClient) Close() error {
	if c.line == nil {
		return nil
	}
	return c.line.Close()
}
