package encoder

import (
	"math"
	"testing"
	"time"
)

func TestParseLine_FullStatusLine(t *testing.T) {
	tr := NewTracker(600)
	line := "frame= 1234 fps= 45 q=28.0 size=   12800kB time=00:05:00.00 bitrate=1398.1kbits/s speed=1.25x"

	u, ok := tr.ParseLine(line)
	if !ok {
		t.Fatal("expected a progress update")
	}
	if !u.FractionOK || math.Abs(u.Fraction-0.5) > 1e-9 {
		t.Errorf("fraction = %v, want 0.5", u.Fraction)
	}
	if !u.SpeedOK || u.Speed != 1.25 {
		t.Errorf("speed = %v, want 1.25", u.Speed)
	}
	if !u.ETAOK {
		t.Fatal("expected ETA with both timestamp and speed present")
	}
	// 300s of media left at 1.25x = 240s wall clock.
	if u.ETA != 240*time.Second {
		t.Errorf("ETA = %v, want 4m0s", u.ETA)
	}
}

func TestParseLine_FractionClamped(t *testing.T) {
	tr := NewTracker(100)
	u, ok := tr.ParseLine("time=00:02:30.00 speed=1.0x")
	if !ok || !u.FractionOK {
		t.Fatal("expected an update")
	}
	if u.Fraction != 0.999 {
		t.Errorf("fraction past the end must clamp to 0.999, got %v", u.Fraction)
	}
	if u.ETA != 0 {
		t.Errorf("ETA past the end must clamp to zero, got %v", u.ETA)
	}
}

func TestParseLine_HoursUnbounded(t *testing.T) {
	tr := NewTracker(200 * 3600)
	u, ok := tr.ParseLine("time=123:45:06.78 speed=10x")
	if !ok || !u.FractionOK {
		t.Fatal("expected an update")
	}
	want := 123*3600 + 45*60 + 6.78
	if math.Abs(u.TimeProcessed-want) > 1e-9 {
		t.Errorf("timestamp = %v, want %v", u.TimeProcessed, want)
	}
}

func TestParseLine_SpeedOnly(t *testing.T) {
	tr := NewTracker(600)
	u, ok := tr.ParseLine("... speed=0.85x")
	if !ok {
		t.Fatal("a lone speed token is still an update")
	}
	if u.FractionOK {
		t.Error("no timestamp, no fraction")
	}
	if !u.SpeedOK || u.Speed != 0.85 {
		t.Errorf("speed = %v, want 0.85", u.Speed)
	}
	if u.ETAOK {
		t.Error("ETA needs both timestamp and speed")
	}
}

func TestParseLine_NearZeroSpeedNoETA(t *testing.T) {
	tr := NewTracker(600)
	u, ok := tr.ParseLine("time=00:00:01.00 speed=0.00x")
	if !ok {
		t.Fatal("expected an update")
	}
	if u.ETAOK {
		t.Error("speed at or below 0.01 must not produce an ETA")
	}
}

func TestParseLine_DiagnosticLinesIgnored(t *testing.T) {
	tr := NewTracker(600)
	lines := []string{
		"",
		"Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':",
		"  Stream #0:0(und): Video: h264 (High) (avc1 / 0x31637661)",
		"[libx264 @ 0x55c] using SAR=1/1",
		"Press [q] to stop, [?] for help",
	}
	for _, line := range lines {
		if _, ok := tr.ParseLine(line); ok {
			t.Errorf("line %q should carry no progress", line)
		}
	}
}

func TestParseLine_UnknownDuration(t *testing.T) {
	tr := NewTracker(0)
	u, ok := tr.ParseLine("time=00:01:00.00 speed=2.0x")
	if !ok {
		t.Fatal("speed is still reported without a known duration")
	}
	if u.FractionOK {
		t.Error("unknown duration must not produce a fraction")
	}
	if u.ETAOK {
		t.Error("unknown duration must not produce an ETA")
	}
}
