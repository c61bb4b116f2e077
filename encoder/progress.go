package encoder

import (
	"regexp"
	"strconv"
	"time"
)

// The encoder's status stream interleaves diagnostics with progress lines.
// Only these two tokens carry progress information.
var (
	timeRe  = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	speedRe = regexp.MustCompile(`speed=\s*(\d+(?:\.\d+)?)x`)
)

// Update is one progress observation extracted from a status line.
type Update struct {
	// Fraction is in [0, 0.999] when FractionOK; the final 100% is reported
	// by process exit, never by the stream.
	Fraction   float64
	FractionOK bool

	// TimeProcessed is the media timestamp the encoder has reached.
	TimeProcessed float64

	// Speed is the realtime multiplier (1.0 = realtime).
	Speed   float64
	SpeedOK bool

	ETA   time.Duration
	ETAOK bool
}

// Tracker converts encoder status lines into progress updates for one pass.
// It is stateless apart from the total duration; a fresh pass reuses it.
type Tracker struct {
	durationSeconds float64
}

// NewTracker returns a tracker for a source of the given duration. A zero or
// unknown duration still parses speed but never reports a fraction.
func NewTracker(durationSeconds float64) *Tracker {
	return &Tracker{durationSeconds: durationSeconds}
}

// ParseLine extracts progress from one status line. Lines without a
// recognizable timestamp or speed token return ok=false; that is normal, not
// an error.
func (t *Tracker) ParseLine(line string) (Update, bool) {
	var u Update

	if ts, ok := parseStatusTime(line); ok {
		u.TimeProcessed = ts
		if t.durationSeconds > 0 {
			frac := ts / t.durationSeconds
			if frac > 0.999 {
				frac = 0.999
			}
			u.Fraction = frac
			u.FractionOK = true
		}
	}

	if m := speedRe.FindStringSubmatch(line); len(m) == 2 {
		if speed, err := strconv.ParseFloat(m[1], 64); err == nil {
			u.Speed = speed
			u.SpeedOK = true
		}
	}

	if u.FractionOK && u.SpeedOK && u.Speed > 0.01 {
		remaining := (t.durationSeconds - u.TimeProcessed) / u.Speed
		if remaining < 0 {
			remaining = 0
		}
		u.ETA = time.Duration(remaining * float64(time.Second))
		u.ETAOK = true
	}

	return u, u.FractionOK || u.SpeedOK
}

// parseStatusTime parses the H:MM:SS.ss token (hours unbounded).
func parseStatusTime(line string) (float64, bool) {
	m := timeRe.FindStringSubmatch(line)
	if len(m) != 4 {
		return 0, false
	}
	hours, err1 := strconv.Atoi(m[1])
	mins, err2 := strconv.Atoi(m[2])
	secs, err3 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return float64(hours)*3600 + float64(mins)*60 + secs, true
}
