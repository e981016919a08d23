package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Parse and apply key:value control packets.
 *
 * Description:	The original firmware's parser mutated the 1024-byte
 *		input buffer in place, writing NULs to delimit tokens.
 *		We keep a pure parser instead: it returns borrowed
 *		string slices of the input and never mutates it.
 *		Semantics are unchanged, split on every ',' for tokens,
 *		first ':' within a token for key/value.
 *
 *------------------------------------------------------------------*/

import (
	"strconv"
	"strings"
)

// MaxCommandPayload is the largest control packet accepted.
const MaxCommandPayload = 1024

// KV is one parsed key:value entry.
type KV struct {
	Key, Value string
}

// ParseCommand splits payload on ',' into tokens and each token on the
// first ':' into key/value. Returns ok == false if payload exceeds
// MaxCommandPayload (the packet is discarded wholesale;
// there is no partial application of an over-length packet).
func ParseCommand(payload []byte) (kvs []KV, ok bool) {
	if len(payload) > MaxCommandPayload {
		return nil, false
	}

	s := string(payload)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, value, found := strings.Cut(tok, ":")
		if !found {
			continue
		}
		kvs = append(kvs, KV{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return kvs, true
}

// CommandOutcome summarizes side effects a caller (the scheduler) must
// react to beyond mutating params, since the handler itself has no
// access to the scheduler's state machine.
type CommandOutcome struct {
	ClearSync bool
	Reboot    bool
	DumpNext  bool
}

// ApplyCommand mutates params in place for each recognized key,
// logging and ignoring anything malformed or unrecognized as an
// ignorable error rather than failing the whole packet.
func ApplyCommand(kvs []KV, params *RuntimeParams, log Logger) CommandOutcome {
	var out CommandOutcome

	for _, kv := range kvs {
		switch kv.Key {
		case "threshold":
			v, err := strconv.ParseUint(kv.Value, 10, 32)
			if err != nil {
				log.Warnf("command: malformed threshold value %q", kv.Value)
				continue
			}
			params.PingThreshold = uint32(v)
			out.ClearSync = true

		case "filter":
			b, err := parseBoolFlag(kv.Value)
			if err != nil {
				log.Warnf("command: malformed filter value %q", kv.Value)
				continue
			}
			params.Filter = b

		case "debug":
			b, err := parseBoolFlag(kv.Value)
			if err != nil {
				log.Warnf("command: malformed debug value %q", kv.Value)
				continue
			}
			params.DebugStream = b

		case "pre_ping_duration_us":
			v, err := strconv.ParseUint(kv.Value, 10, 64)
			if err != nil {
				log.Warnf("command: malformed pre_ping_duration_us value %q", kv.Value)
				continue
			}
			params.PrePingDuration = MicrosToTicks(int64(v))

		case "post_ping_duration_us":
			v, err := strconv.ParseUint(kv.Value, 10, 64)
			if err != nil {
				log.Warnf("command: malformed post_ping_duration_us value %q", kv.Value)
				continue
			}
			params.PostPingDuration = MicrosToTicks(int64(v))

		case "clk_div":
			v, err := strconv.Atoi(kv.Value)
			if err != nil || v < 1 {
				log.Warnf("command: malformed clk_div value %q", kv.Value)
				continue
			}
			params.SampleClkDiv = v

		case "samples_per_packet":
			v, err := strconv.Atoi(kv.Value)
			if err != nil || v < 1 {
				log.Warnf("command: malformed samples_per_packet value %q", kv.Value)
				continue
			}
			params.SamplesPerPacket = v

		case "dump":
			out.DumpNext = true

		case "reset":
			out.Reboot = true

		default:
			log.Debugf("command: ignoring unknown key %q", kv.Key)
		}
	}

	return out
}

func parseBoolFlag(v string) (bool, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}
