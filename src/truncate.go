package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Locate the ping pulse window within a short (~300ms)
 *		post-sync capture.
 *
 *------------------------------------------------------------------*/

// TruncateResult reports the located pulse window, or Located == false
// if no crossing was found in the buffer.
type TruncateResult struct {
	Start, End int
	Located    bool
}

// Truncate scans buf[:n] (sampled at fs Hz) for the first channel-0
// sample whose magnitude exceeds params.PingThreshold, then frames a
// window [Start, End) around it: Start backs off PrePingDuration to
// capture the rising edge, End extends PostPingDuration rounded up to
// a whole samples_per_packet to bound the correlation length. Returns
// Located == false, no error, when nothing crosses.
func Truncate(buf []Frame, n int, params RuntimeParams, fs float64) TruncateResult {
	crossing := -1
	for i := 0; i < n; i++ {
		if absInt32(buf[i][0]) > params.PingThreshold {
			crossing = i
			break
		}
	}
	if crossing == -1 {
		return TruncateResult{}
	}

	pre := int(fs * TicksToSeconds(params.PrePingDuration))
	post := int(fs * TicksToSeconds(params.PostPingDuration))

	start := crossing - pre
	if start < 0 {
		start = 0
	}

	end := crossing + post
	if end > n {
		end = n
	}
	end = RoundUpToPacket(end, params.SamplesPerPacket)
	if end > n {
		end = n
	}

	// pre/post are commandable to 0, so the window above can collapse
	// onto the crossing sample itself (start == end); bump end by at
	// least one packet so the window always holds the crossing sample.
	if end <= start {
		end = RoundUpToPacket(start+1, params.SamplesPerPacket)
		if end > n {
			end = n
		}
	}

	return TruncateResult{Start: start, End: end, Located: true}
}
