package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Load the startup configuration file.
 *
 * Description:	Parsed once at boot with gopkg.in/yaml.v3. Unlike
 *		RuntimeParams, StartupConfig is never mutated after load,
 *		the command handler only ever touches RuntimeParams.
 *
 *------------------------------------------------------------------*/

import (
	"os"

	"gopkg.in/yaml.v3"
)

// NetworkIdentity is the static network configuration named in
type NetworkIdentity struct {
	DeviceIP string `yaml:"device_ip"`
	Gateway  string `yaml:"gateway"`
	MAC      string `yaml:"mac"`
	HostIP   string `yaml:"host_ip"`
}

// StartupConfig is the whole of the YAML startup file.
type StartupConfig struct {
	Network NetworkIdentity `yaml:"network"`

	InitialParams struct {
		SampleClkDiv     int    `yaml:"sample_clk_div"`
		SamplesPerPacket int    `yaml:"samples_per_packet"`
		PingThreshold    uint32 `yaml:"ping_threshold"`
		PrePingUs        int64  `yaml:"pre_ping_us"`
		PostPingUs       int64  `yaml:"post_ping_us"`
		Filter           bool   `yaml:"filter"`
		DebugStream      bool   `yaml:"debug_stream"`
	} `yaml:"initial_params"`

	DNSSDName       string `yaml:"dns_sd_name"`
	DNSSDEnabled    bool   `yaml:"dns_sd_enabled"`
	TraceDir        string `yaml:"trace_dir"`
	SilentGPIOChip  string `yaml:"silent_gpio_chip"`
	SilentGPIOLine  int    `yaml:"silent_gpio_line"`
}

// DefaultStartupConfig mirrors the device identity and initial
// RuntimeParams named in
func DefaultStartupConfig() StartupConfig {
	var cfg StartupConfig
	cfg.Network = NetworkIdentity{
		DeviceIP: "192.168.0.7/24",
		Gateway:  "192.168.1.1",
		MAC:      "00:0a:35:00:01:02",
		HostIP:   "192.168.0.2",
	}
	p := DefaultRuntimeParams()
	cfg.InitialParams.SampleClkDiv = p.SampleClkDiv
	cfg.InitialParams.SamplesPerPacket = p.SamplesPerPacket
	cfg.InitialParams.PingThreshold = p.PingThreshold
	cfg.InitialParams.PrePingUs = 100
	cfg.InitialParams.PostPingUs = 50
	cfg.InitialParams.Filter = p.Filter
	cfg.InitialParams.DebugStream = p.DebugStream
	cfg.DNSSDName = "abyssal-hydrophone"
	cfg.DNSSDEnabled = true
	return cfg
}

// RuntimeParams converts the loaded initial-parameter block into a
// RuntimeParams value.
func (c StartupConfig) RuntimeParams() RuntimeParams {
	return RuntimeParams{
		SampleClkDiv:     c.InitialParams.SampleClkDiv,
		SamplesPerPacket: c.InitialParams.SamplesPerPacket,
		PingThreshold:    c.InitialParams.PingThreshold,
		PrePingDuration:  MicrosToTicks(c.InitialParams.PrePingUs),
		PostPingDuration: MicrosToTicks(c.InitialParams.PostPingUs),
		Filter:           c.InitialParams.Filter,
		DebugStream:      c.InitialParams.DebugStream,
	}
}

// LoadStartupConfig reads and parses path, falling back to
// DefaultStartupConfig's values for any field the file does not set.
// A field the file sets explicitly, even to zero, keeps the file's value.
func LoadStartupConfig(path string) (StartupConfig, error) {
	cfg := DefaultStartupConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return StartupConfig{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return StartupConfig{}, err
	}
	return cfg, nil
}
