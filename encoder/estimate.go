package encoder

import (
	"errors"
	"fmt"
	"math"

	"fftoolbox/config"
)

// MinVideoKbps floors the estimate so very long or very small targets never
// degenerate into a near-zero bitrate.
const MinVideoKbps = 80

// ErrInsufficientData is returned when a size target is requested but the
// source duration is unknown or zero. No bitrate is guessed silently; the
// caller must obtain an explicit bitrate from the user instead.
var ErrInsufficientData = errors.New("cannot estimate bitrate: source duration unknown")

// EstimateVideoBitrateKbps computes the video bitrate that makes a two-pass
// encode land at or under targetMB.
//
//	kbps = floor(targetMB * 8 * 1024 * 1024 * margin / duration / 1000) - audioKbps
//
// floored to MinVideoKbps.
func EstimateVideoBitrateKbps(targetMB, durationSeconds float64, audioKbps int, safetyMargin float64) (int, error) {
	if durationSeconds <= 0 {
		return 0, ErrInsufficientData
	}
	budget := targetMB * 8 * 1024 * 1024 * safetyMargin
	kbps := int(math.Floor(budget/durationSeconds/1000)) - audioKbps
	if kbps < MinVideoKbps {
		kbps = MinVideoKbps
	}
	return kbps, nil
}

// resolutionTier pairs a resolution with the minimum video bitrate at which
// H.264 still looks acceptable there.
type resolutionTier struct {
	width   int
	height  int
	minKbps int
	label   string
}

// Descending order; the first tier whose floor the achievable bitrate meets
// (and which the source can fill) wins.
var resolutionTiers = []resolutionTier{
	{3840, 2160, 8000, "4K"},
	{2560, 1440, 4000, "1440p"},
	{1920, 1080, 1500, "1080p"},
	{1280, 720, 500, "720p"},
	{854, 480, 200, "480p"},
	{640, 360, 100, "360p"},
}

// RecommendResolutionForTarget suggests a downscale cap for a size-targeted
// encode. The cap is nil when the chosen tier already matches or exceeds the
// source (no downscale needed). Advisory only: the controller never enforces
// it.
func RecommendResolutionForTarget(targetMB, durationSeconds float64, audioKbps, srcW, srcH int) (*config.Resolution, string) {
	vkbps, err := EstimateVideoBitrateKbps(targetMB, durationSeconds, audioKbps, config.DefaultSafetyMargin)
	if err != nil {
		return nil, "cannot recommend: unknown duration"
	}

	chosen := resolutionTiers[len(resolutionTiers)-1]
	matched := false
	for _, tier := range resolutionTiers {
		if vkbps >= tier.minKbps && srcW >= tier.width && srcH >= tier.height {
			chosen = tier
			matched = true
			break
		}
	}

	var rec *config.Resolution
	if chosen.width < srcW || chosen.height < srcH {
		rec = &config.Resolution{Width: chosen.width, Height: chosen.height}
	}
	if !matched && rec != nil && (rec.Width > srcW || rec.Height > srcH) {
		// The lowest tier can still exceed a tiny source in one dimension;
		// never recommend upscaling.
		rec = nil
	}

	detail := fmt.Sprintf("video ~%d kb/s at %.0f MB, recommended %s", vkbps, targetMB, chosen.label)
	if rec == nil {
		detail += " (keep original)"
	}
	return rec, detail
}
