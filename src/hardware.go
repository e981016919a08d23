package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Aggregate the hardware register collaborators (ADC
 *		control, DMA engine, SPI driver) behind one handle
 *		constructed once at startup, instead of process-wide
 *		globals.
 *
 * Description:	Each register block keeps a single writer: the ADC
 *		control block's clk_div/samples_per_packet registers
 *		are only ever written by the scheduler applying a
 *		RuntimeParams snapshot at a state boundary
 *		(scheduler.go). The registers themselves are still
 *		shared state, so the aggregate is passed by reference,
 *		not copied.
 *
 *------------------------------------------------------------------*/

// ADCControl is the narrow contract the scheduler needs from the ADC
// register block. Its SPI bring-up and bit layout are out of scope;
// this is the whole of the abstract collaborator's surface.
type ADCControl interface {
	SetClkDiv(div int)
	SetSamplesPerPacket(n int)
}

// Rebooter triggers the system reboot collaborator used on fatal
// hardware errors and by the `reset` command.
type Rebooter interface {
	Reboot()
}

// Hardware bundles the collaborators the core pipeline needs. It is
// constructed once in the firmware's init/main and handed to the
// scheduler by reference; nothing else holds a pointer to its parts.
type Hardware struct {
	ADC      ADCControl
	Sampler  *Sampler
	Clock    Clock
	Rebooter Rebooter
}

// ApplyParams pushes the clock divider and DMA granularity to the ADC
// control registers. Called at the start of each acquisition (sync,
// CAPTURE, debug capture) so a mid-cycle command never changes the
// rate underneath an in-flight acquisition.
func (hw *Hardware) ApplyParams(p RuntimeParams) {
	hw.ADC.SetClkDiv(p.SampleClkDiv)
	hw.ADC.SetSamplesPerPacket(p.SamplesPerPacket)
}
