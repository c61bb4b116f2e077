package encoder

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"testing/quick"

	"fftoolbox/config"
)

func argValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func TestScaleFilter(t *testing.T) {
	tests := []struct {
		name     string
		srcW     int
		srcH     int
		cap      config.Resolution
		expected string
	}{
		{"within cap", 1280, 720, config.Resolution{Width: 1920, Height: 1080}, ""},
		{"exact fit", 1920, 1080, config.Resolution{Width: 1920, Height: 1080}, ""},
		{"4K to 1080p", 3840, 2160, config.Resolution{Width: 1920, Height: 1080}, "scale=1920:1080:flags=lanczos"},
		{"odd result rounded even", 1920, 1080, config.Resolution{Width: 1279, Height: 720}, "scale=1278:718:flags=lanczos"},
		{"vertical video", 1080, 1920, config.Resolution{Width: 1280, Height: 720}, "scale=404:720:flags=lanczos"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScaleFilter(tc.srcW, tc.srcH, tc.cap)
			if got != tc.expected {
				t.Errorf("ScaleFilter(%d, %d, %v) = %q, want %q", tc.srcW, tc.srcH, tc.cap, got, tc.expected)
			}
		})
	}
}

// Scaled dimensions are always even and never exceed the cap.
func TestScaleFilter_EvenWithinCap(t *testing.T) {
	f := func(wSeed, hSeed, cwSeed, chSeed uint16) bool {
		srcW := 2 + int(wSeed%7680)
		srcH := 2 + int(hSeed%4320)
		capW := 2 + int(cwSeed%3840)
		capH := 2 + int(chSeed%2160)

		out := ScaleFilter(srcW, srcH, config.Resolution{Width: capW, Height: capH})
		if out == "" {
			return srcW <= capW && srcH <= capH
		}
		newW, newH, ok := parseScaleDims(out)
		return ok && newW%2 == 0 && newH%2 == 0 && newW <= capW && newH <= capH
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func parseScaleDims(filter string) (int, int, bool) {
	filter = strings.TrimPrefix(filter, "scale=")
	filter = strings.TrimSuffix(filter, ":flags=lanczos")
	parts := strings.SplitN(filter, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	return w, h, err1 == nil && err2 == nil
}

func TestBuildArgs_StreamCopy(t *testing.T) {
	cfg := config.Encode{
		VideoCodec: "copy", Goal: config.CopyGoal(),
		AudioCodec: "aac", AudioKbps: 192,
	}
	args := BuildArgs("in.mov", "out.mp4", cfg, 1920, 1080, 0, 0, "")

	if v, _ := argValue(args, "-c:v"); v != "copy" {
		t.Errorf("expected video copy, got %v", args)
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "-vf") || strings.Contains(joined, "-crf") || strings.Contains(joined, "-b:v") {
		t.Errorf("stream copy must skip filter and rate control flags: %v", args)
	}
	if v, _ := argValue(args, "-b:a"); v != "192k" {
		t.Errorf("expected audio re-encode at 192k, got %v", args)
	}
	if !strings.Contains(joined, "-movflags +faststart") {
		t.Errorf("expected fast-start placement, got %v", args)
	}
}

func TestBuildArgs_QualityMode(t *testing.T) {
	cfg := config.Encode{
		VideoCodec: "libx264", Goal: config.QualityGoal(22), Speed: "slow",
		AudioCodec: "aac", AudioKbps: 128,
	}
	args := BuildArgs("in.mp4", "out.mp4", cfg, 1920, 1080, 0, 0, "")

	if v, _ := argValue(args, "-crf"); v != "22" {
		t.Errorf("expected -crf 22, got %v", args)
	}
	if _, ok := argValue(args, "-b:v"); ok {
		t.Errorf("quality mode must not carry a bitrate: %v", args)
	}
	if v, _ := argValue(args, "-profile:v"); v != "high" {
		t.Errorf("expected h264 high profile, got %v", args)
	}
	if v, _ := argValue(args, "-vf"); v != "scale=trunc(iw/2)*2:trunc(ih/2)*2" {
		t.Errorf("expected parity correction filter, got %q", v)
	}
}

func TestBuildArgs_BitrateModeSuppressesQualityFactor(t *testing.T) {
	cfg := config.Encode{
		VideoCodec: "libx264", Goal: config.SizeGoal(100), Speed: "slow",
		AudioCodec: "aac", AudioKbps: 128,
	}
	args := BuildArgs("in.mp4", "out.mp4", cfg, 1920, 1080, 1000, 0, "")

	if v, _ := argValue(args, "-b:v"); v != "1000k" {
		t.Errorf("expected -b:v 1000k, got %v", args)
	}
	if v, _ := argValue(args, "-maxrate"); v != "1300k" {
		t.Errorf("expected maxrate 1.3x, got %v", args)
	}
	if v, _ := argValue(args, "-bufsize"); v != "2000k" {
		t.Errorf("expected bufsize 2.0x, got %v", args)
	}
	if _, ok := argValue(args, "-crf"); ok {
		t.Errorf("bitrate mode must omit the quality factor: %v", args)
	}
}

func TestBuildArgs_PassFlags(t *testing.T) {
	cfg := config.Encode{
		VideoCodec: "libx264", Goal: config.SizeGoal(100), Speed: "slow",
		AudioCodec: "aac", AudioKbps: 128, TwoPass: true,
	}

	args1 := BuildArgs("in.mp4", "out.mp4", cfg, 1920, 1080, 1000, 1, "/tmp/x/ff2pass")
	if v, _ := argValue(args1, "-pass"); v != "1" {
		t.Fatalf("expected -pass 1, got %v", args1)
	}
	joined1 := strings.Join(args1, " ")
	if !strings.Contains(joined1, "-an") || !strings.Contains(joined1, os.DevNull) {
		t.Errorf("pass 1 must drop audio and discard output: %v", args1)
	}
	if strings.Contains(joined1, "out.mp4") {
		t.Errorf("pass 1 must not write the real output: %v", args1)
	}

	args2 := BuildArgs("in.mp4", "out.mp4", cfg, 1920, 1080, 1000, 2, "/tmp/x/ff2pass")
	if v, _ := argValue(args2, "-pass"); v != "2" {
		t.Fatalf("expected -pass 2, got %v", args2)
	}
	if v, _ := argValue(args2, "-passlogfile"); v != "/tmp/x/ff2pass" {
		t.Errorf("expected shared statistics path, got %v", args2)
	}
	if args2[len(args2)-1] != "out.mp4" {
		t.Errorf("pass 2 must produce the real output last: %v", args2)
	}
	if v, _ := argValue(args2, "-c:a"); v != "aac" {
		t.Errorf("pass 2 must attach audio: %v", args2)
	}
}

func TestBuildArgs_H265Tag(t *testing.T) {
	cfg := config.Encode{
		VideoCodec: "libx265", Goal: config.QualityGoal(18), Speed: "slow",
		AudioCodec: "aac", AudioKbps: 192,
	}
	args := BuildArgs("in.mp4", "out.mp4", cfg, 1920, 1080, 0, 0, "")
	if v, _ := argValue(args, "-tag:v"); v != "hvc1" {
		t.Errorf("expected Apple hvc1 tag for hevc, got %v", args)
	}
}

func TestBuildArgs_Filters(t *testing.T) {
	cfg := config.Encode{
		VideoCodec: "libx264", Goal: config.QualityGoal(23), Speed: "medium",
		AudioCodec: "aac", AudioKbps: 128,
		Deinterlace: true, Denoise: true,
		MaxRes: &config.Resolution{Width: 1280, Height: 720},
	}
	args := BuildArgs("in.mp4", "out.mp4", cfg, 1920, 1080, 0, 0, "")

	vf, ok := argValue(args, "-vf")
	if !ok {
		t.Fatalf("expected a filter chain: %v", args)
	}
	want := "yadif=mode=1,hqdn3d=4:3:6:4.5,scale=1280:720:flags=lanczos"
	if vf != want {
		t.Errorf("filter chain = %q, want %q", vf, want)
	}
}

func TestBuildArgs_NoUpscale(t *testing.T) {
	cfg := config.Encode{
		VideoCodec: "libx264", Goal: config.QualityGoal(23), Speed: "medium",
		AudioCodec: "aac", AudioKbps: 128,
		MaxRes: &config.Resolution{Width: 1920, Height: 1080},
	}
	args := BuildArgs("in.mp4", "out.mp4", cfg, 1280, 720, 0, 0, "")

	vf, _ := argValue(args, "-vf")
	if strings.Contains(vf, "lanczos") {
		t.Errorf("source within cap must not be scaled: %q", vf)
	}
	if vf != "scale=trunc(iw/2)*2:trunc(ih/2)*2" {
		t.Errorf("expected parity correction in place of downscale, got %q", vf)
	}
}

func TestBuildArgs_AudioMapping(t *testing.T) {
	base := config.Encode{
		VideoCodec: "libx264", Goal: config.QualityGoal(23), Speed: "medium",
		AudioCodec: "aac", AudioKbps: 128,
	}

	single := strings.Join(BuildArgs("in.mkv", "out.mp4", base, 1920, 1080, 0, 0, ""), " ")
	if !strings.Contains(single, "-map 0:a:0?") {
		t.Errorf("expected optional first-track mapping: %v", single)
	}

	multi := base
	multi.AllAudioTracks = true
	all := strings.Join(BuildArgs("in.mkv", "out.mp4", multi, 1920, 1080, 0, 0, ""), " ")
	if !strings.Contains(all, "-map 0:a ") && !strings.HasSuffix(all, "-map 0:a") {
		t.Errorf("expected all-track mapping: %v", all)
	}
	if strings.Contains(all, "0:a:0?") {
		t.Errorf("multi-track policy must not restrict to the first track: %v", all)
	}
}

func TestBuildArgs_AudioCopyAndFlac(t *testing.T) {
	base := config.Encode{
		VideoCodec: "libx264", Goal: config.QualityGoal(23), Speed: "medium",
		AudioKbps: 128,
	}

	cp := base
	cp.AudioCodec = "copy"
	args := BuildArgs("in.mkv", "out.mp4", cp, 1920, 1080, 0, 0, "")
	if v, _ := argValue(args, "-c:a"); v != "copy" {
		t.Errorf("expected audio copy, got %v", args)
	}
	if _, ok := argValue(args, "-b:a"); ok {
		t.Errorf("audio copy must not carry a bitrate: %v", args)
	}

	fl := base
	fl.AudioCodec = "flac"
	args = BuildArgs("in.mkv", "out.mp4", fl, 1920, 1080, 0, 0, "")
	if v, _ := argValue(args, "-c:a"); v != "flac" {
		t.Errorf("expected flac audio, got %v", args)
	}
	if _, ok := argValue(args, "-b:a"); ok {
		t.Errorf("lossless audio must not carry a bitrate: %v", args)
	}
}

func TestBuildArgs_Idempotent(t *testing.T) {
	cfg := config.Encode{
		VideoCodec: "libx264", Goal: config.SizeGoal(95), Speed: "slow",
		AudioCodec: "aac", AudioKbps: 96,
		MaxRes: &config.Resolution{Width: 1280, Height: 720}, TwoPass: true,
	}
	a := BuildArgs("in.mp4", "out.mp4", cfg, 3840, 2160, 1200, 2, "/tmp/s/ff2pass")
	b := BuildArgs("in.mp4", "out.mp4", cfg, 3840, 2160, 1200, 2, "/tmp/s/ff2pass")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different argument lists:\n%v\n%v", a, b)
	}
}
