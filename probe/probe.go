// Package probe wraps ffprobe and turns its JSON report into the immutable
// source description the encode pipeline works from.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// SourceMedia describes one input file. Built once per file before any encode
// decision and never mutated.
type SourceMedia struct {
	Path               string
	DurationSeconds    float64
	ContainerSizeBytes int64
	VideoWidth         int
	VideoHeight        int
	VideoCodecName     string
	// VideoBitrateBps is 0 when the container does not report a stream
	// bitrate. Consumers fall back to a size-derived estimate.
	VideoBitrateBps int64
	AudioCodecName  string
	AudioTrackCount int
}

// HasVideo reports whether a video stream was found.
func (s *SourceMedia) HasVideo() bool {
	return s.VideoWidth > 0 && s.VideoHeight > 0
}

// Prober runs ffprobe against input files.
type Prober struct {
	Bin     string
	Timeout time.Duration
}

// NewProber returns a Prober using the given ffprobe binary name.
func NewProber(bin string, timeout time.Duration) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Prober{Bin: bin, Timeout: timeout}
}

// Probe inspects one file. A non-zero exit, timeout or unparsable report is a
// probe failure; the caller skips the file and continues the batch.
func (p *Prober) Probe(ctx context.Context, path string) (*SourceMedia, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	src, err := parseProbeOutput(out)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	src.Path = path
	return src, nil
}

// ffprobe reports most numbers as strings.
type probeReport struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	BitRate   string `json:"bit_rate"`
	Duration  string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

func parseProbeOutput(data []byte) (*SourceMedia, error) {
	var report probeReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unparsable probe output: %w", err)
	}

	src := &SourceMedia{
		ContainerSizeBytes: parseInt(report.Format.Size),
	}

	var videoDuration float64
	for _, st := range report.Streams {
		switch st.CodecType {
		case "video":
			if src.VideoCodecName != "" {
				continue // first video stream wins
			}
			src.VideoCodecName = st.CodecName
			src.VideoWidth = st.Width
			src.VideoHeight = st.Height
			src.VideoBitrateBps = parseInt(st.BitRate)
			videoDuration = parseFloat(st.Duration)
		case "audio":
			if src.AudioTrackCount == 0 {
				src.AudioCodecName = st.CodecName
			}
			src.AudioTrackCount++
		}
	}

	// The video stream's duration is the most accurate; the container
	// duration covers streams that do not report one.
	if videoDuration > 0 {
		src.DurationSeconds = videoDuration
	} else {
		src.DurationSeconds = parseFloat(report.Format.Duration)
	}
	return src, nil
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
