package encoder

import (
	"fmt"
	"math"
	"os"
	"strings"

	"fftoolbox/config"
)

// Short-term excursion bounds around the two-pass average bitrate.
const (
	maxrateFactor = 1.3
	bufsizeFactor = 2.0
)

// ScaleFilter returns the ffmpeg scale filter that fits src inside the cap
// while preserving aspect ratio, with both dimensions rounded down to even.
// Empty when the source is already within the cap (downscale only).
func ScaleFilter(srcW, srcH int, res config.Resolution) string {
	if srcW <= res.Width && srcH <= res.Height {
		return ""
	}
	ratio := math.Min(float64(res.Width)/float64(srcW), float64(res.Height)/float64(srcH))
	newW := int(float64(srcW)*ratio) / 2 * 2
	newH := int(float64(srcH)*ratio) / 2 * 2
	return fmt.Sprintf("scale=%d:%d:flags=lanczos", newW, newH)
}

// buildFilterList assembles the video filter chain: deinterlace, denoise,
// then either a downscale or an even-parity correction. Codecs with 4:2:0
// chroma subsampling reject odd dimensions, so some scale filter is always
// present.
func buildFilterList(cfg config.Encode, srcW, srcH int) []string {
	var filters []string
	if cfg.Deinterlace {
		filters = append(filters, "yadif=mode=1")
	}
	if cfg.Denoise {
		filters = append(filters, "hqdn3d=4:3:6:4.5")
	}
	scaled := false
	if cfg.MaxRes != nil && srcW > 0 && srcH > 0 {
		if sf := ScaleFilter(srcW, srcH, *cfg.MaxRes); sf != "" {
			filters = append(filters, sf)
			scaled = true
		}
	}
	if !scaled {
		filters = append(filters, "scale=trunc(iw/2)*2:trunc(ih/2)*2")
	}
	return filters
}

// BuildArgs translates a resolved encode plan into the ordered ffmpeg
// argument list. Pure: identical inputs always yield identical arguments.
//
// videoKbps > 0 selects the size-targeting rate-control flags and suppresses
// the quality factor. pass is 0 for single-pass, 1 or 2 for the two-pass
// protocol with passLog as the shared statistics path.
func BuildArgs(input, output string, cfg config.Encode, srcW, srcH, videoKbps, pass int, passLog string) []string {
	args := []string{"-hide_banner", "-y", "-i", input}

	if cfg.Goal.Kind == config.GoalStreamCopy {
		args = append(args, audioMapArgs(cfg)...)
		args = append(args, "-c:v", "copy")
		args = append(args, audioCodecArgs(cfg)...)
		args = append(args, "-movflags", "+faststart", output)
		return args
	}

	if filters := buildFilterList(cfg, srcW, srcH); len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}
	args = append(args, audioMapArgs(cfg)...)

	switch cfg.VideoCodec {
	case "libx264":
		args = append(args, "-c:v", "libx264", "-profile:v", "high", "-pix_fmt", "yuv420p")
	case "libx265":
		args = append(args, "-c:v", "libx265", "-pix_fmt", "yuv420p", "-tag:v", "hvc1")
	default:
		args = append(args, "-c:v", cfg.VideoCodec, "-pix_fmt", "yuv420p")
	}

	if videoKbps > 0 {
		maxrate := int(float64(videoKbps) * maxrateFactor)
		bufsize := int(float64(videoKbps) * bufsizeFactor)
		args = append(args,
			"-b:v", fmt.Sprintf("%dk", videoKbps),
			"-maxrate", fmt.Sprintf("%dk", maxrate),
			"-bufsize", fmt.Sprintf("%dk", bufsize),
		)
	} else if cfg.Goal.Kind == config.GoalConstantQuality {
		args = append(args, "-crf", fmt.Sprintf("%d", cfg.Goal.QualityFactor))
	}

	if cfg.Speed != "" {
		args = append(args, "-preset", cfg.Speed)
	}

	// Pass 1 analyzes video only and discards its output; pass 2 reads the
	// statistics and produces the real file with audio attached.
	if pass == 1 {
		args = append(args, "-pass", "1", "-passlogfile", passLog, "-an", "-f", "mp4", os.DevNull)
		return args
	}
	if pass == 2 {
		args = append(args, "-pass", "2", "-passlogfile", passLog)
	}

	args = append(args, audioCodecArgs(cfg)...)
	args = append(args, "-movflags", "+faststart", output)
	return args
}

// audioMapArgs selects tracks: every audio track under the multi-track
// policy, otherwise the first audio track if one exists. A missing audio
// stream must not fail the job, hence the trailing '?'.
func audioMapArgs(cfg config.Encode) []string {
	if cfg.AllAudioTracks {
		return []string{"-map", "0:v", "-map", "0:a"}
	}
	return []string{"-map", "0:v", "-map", "0:a:0?"}
}

func audioCodecArgs(cfg config.Encode) []string {
	switch cfg.AudioCodec {
	case "copy":
		return []string{"-c:a", "copy"}
	case "flac":
		return []string{"-c:a", "flac"}
	default:
		return []string{"-c:a", cfg.AudioCodec, "-b:a", fmt.Sprintf("%dk", cfg.AudioKbps)}
	}
}
