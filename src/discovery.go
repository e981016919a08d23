package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Announce the command/telemetry endpoint via DNS-SD so a
 *		host does not need a static IP table.
 *
 * Description:	Uses the pure-Go github.com/brutella/dnssd package for
 *		cross-platform mDNS/DNS-SD announcement. Purely additive:
 *		a failure to advertise is logged and ignored.
 *
 *------------------------------------------------------------------*/

import (
	"context"

	"github.com/brutella/dnssd"
)

// ServiceType is the DNS-SD service type advertised for the command
// listener.
const ServiceType = "_hydroping._udp"

// Discovery advertises the firmware's command endpoint on the LAN.
type Discovery struct {
	responder dnssd.Responder
	cancel    context.CancelFunc
}

// Announce starts advertising name on the given command port. Call
// Stop to withdraw the announcement.
func Announce(ctx context.Context, log Logger, name string, port int) *Discovery {
	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Port: port,
	}

	svc, err := dnssd.NewService(cfg)
	if err != nil {
		log.Warnf("discovery: building service record: %v", err)
		return nil
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		log.Warnf("discovery: starting responder: %v", err)
		return nil
	}

	if _, err := responder.Add(svc); err != nil {
		log.Warnf("discovery: registering service: %v", err)
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	d := &Discovery{responder: responder, cancel: cancel}

	go func() {
		if err := responder.Respond(runCtx); err != nil && runCtx.Err() == nil {
			log.Warnf("discovery: responder stopped: %v", err)
		}
	}()

	return d
}

// Stop withdraws the announcement. Safe to call on a nil Discovery
// (e.g. when Announce failed to start).
func (d *Discovery) Stop() {
	if d == nil {
		return
	}
	d.cancel()
}
