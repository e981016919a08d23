/*------------------------------------------------------------------
 *
 * Purpose:	Main entry point for the hydrophone acquisition
 *		firmware: wires the hardware aggregate, loads the
 *		startup config, and runs the ping-phase scheduler.
 *
 *------------------------------------------------------------------*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/hydrozynq/abyssal/src"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "/etc/abyssal/config.yaml", "startup configuration file")
		simulate   = pflag.BoolP("simulate", "s", false, "use the synthetic ADC source instead of real hardware")
		verbose    = pflag.BoolP("verbose", "v", false, "enable debug-level logging")
		gpioChip   = pflag.String("silent-gpio-chip", "", "GPIO character device for the silent-running interlock (e.g. gpiochip0)")
		gpioLine   = pflag.Int("silent-gpio-line", -1, "GPIO line offset for the silent-running interlock")
	)
	pflag.Parse()

	level := charmlog.InfoLevel
	if *verbose {
		level = charmlog.DebugLevel
	}
	log := acq.NewLogger(level)

	cfg, err := acq.LoadStartupConfig(*configPath)
	if err != nil {
		log.Warnf("config: %v, using defaults", err)
		cfg = acq.DefaultStartupConfig()
	}

	clock := acq.NewSystemClock()

	var source acq.FrameSource
	var adc acq.ADCControl
	if *simulate {
		sim := acq.NewSimPingSource(clock)
		source = sim
		adc = sim
	} else {
		fmt.Fprintln(os.Stderr, "real ADC/SPI/DMA bring-up is outside this repository's scope; pass --simulate")
		os.Exit(1)
	}

	hw := &acq.Hardware{
		ADC:      adc,
		Sampler:  &acq.Sampler{Source: source},
		Clock:    clock,
		Rebooter: newRebooter(log),
	}

	params := cfg.RuntimeParams()
	sched := acq.NewScheduler(hw, params, log)

	commands, err := acq.NewCommandListener(acq.CommandPort)
	if err != nil {
		log.Errorf("binding command listener: %v", err)
		os.Exit(1)
	}
	defer commands.Close()
	sched.Commands = commands

	sched.RawTx, err = acq.NewRawStreamTransmitter(cfg.Network.HostIP)
	if err != nil {
		log.Errorf("binding raw stream transmitter: %v", err)
		os.Exit(1)
	}
	sched.XCorrTx, err = acq.NewXCorrTransmitter(cfg.Network.HostIP)
	if err != nil {
		log.Errorf("binding xcorr stream transmitter: %v", err)
		os.Exit(1)
	}
	sched.ResultTx, err = acq.NewResultTransmitter(cfg.Network.HostIP)
	if err != nil {
		log.Errorf("binding result transmitter: %v", err)
		os.Exit(1)
	}

	silentSender, err := acq.NewSilentRequestSender(cfg.Network.HostIP)
	if err != nil {
		log.Errorf("binding silent-running sender: %v", err)
		os.Exit(1)
	}
	silentClient := acq.NewSilentRunningClient(silentSender)
	if chip := resolveGPIOChip(*gpioChip, cfg); chip != "" {
		line := resolveGPIOLine(*gpioLine, cfg)
		if err := silentClient.WithGPIOLine(chip, line); err != nil {
			log.Warnf("%v, continuing with UDP-only silent-running requests", err)
		}
	}
	sched.SilentClient = silentClient

	if cfg.TraceDir != "" {
		sched.Archiver = acq.NewTraceArchiver(cfg.TraceDir, "ping-%Y%m%d-%H%M%S")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.DNSSDEnabled {
		d := acq.Announce(ctx, log, cfg.DNSSDName, acq.CommandPort)
		defer d.Stop()
	}

	log.Infof("abyssal firmware starting, device=%s host=%s", cfg.Network.DeviceIP, cfg.Network.HostIP)
	sched.Run(ctx)
}

func resolveGPIOChip(flagValue string, cfg acq.StartupConfig) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.SilentGPIOChip
}

func resolveGPIOLine(flagValue int, cfg acq.StartupConfig) int {
	if flagValue >= 0 {
		return flagValue
	}
	return cfg.SilentGPIOLine
}

// processRebooter issues a real Linux reboot syscall via
// golang.org/x/sys/unix. On a target without CAP_SYS_BOOT (e.g. an
// unprivileged development container) the syscall fails with EPERM;
// that failure is logged and the process exits instead, since either
// way the scheduler must not continue running with stale state.
type processRebooter struct {
	log acq.Logger
}

func newRebooter(log acq.Logger) *processRebooter {
	return &processRebooter{log: log}
}

func (r *processRebooter) Reboot() {
	r.log.Errorf("reboot requested, syncing filesystems")
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		r.log.Errorf("reboot syscall failed: %v, exiting instead", err)
	}
	os.Exit(1)
}
