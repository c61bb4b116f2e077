package encoder

import (
	"math"

	"fftoolbox/config"
	"fftoolbox/probe"
)

// SmartPlan is the analyzer's recommendation for one source: a quality factor
// plus an optional downscale cap, with the measurements that produced them.
type SmartPlan struct {
	QualityFactor int
	MaxRes        *config.Resolution

	// SourceKbps and BitsPerPixel are the measurements behind the decision,
	// kept for operator display.
	SourceKbps   float64
	BitsPerPixel float64

	// EstimatedOutputMB is a rough feedback figure, not a guarantee.
	EstimatedOutputMB float64
}

// ComputeSmartPlan maps the source's bits-per-pixel-per-second onto a quality
// factor: heavily compressed sources get a gentler (higher) factor since
// little headroom remains, bloated sources (ProRes, raw) get an aggressive
// one.
func ComputeSmartPlan(src *probe.SourceMedia) SmartPlan {
	bps := float64(src.VideoBitrateBps)
	if bps <= 0 && src.DurationSeconds > 0 {
		// Stream bitrate unavailable; derive it from the container size.
		bps = float64(src.ContainerSizeBytes) * 8 / src.DurationSeconds
	}
	kbps := bps / 1000

	pixels := float64(src.VideoWidth * src.VideoHeight)
	var bpp float64
	if pixels > 0 {
		bpp = kbps / pixels
	}

	var crf int
	switch {
	case bpp > 0.5:
		crf = 18
	case bpp > 0.1:
		crf = 20
	case bpp > 0.04:
		crf = 22
	case bpp > 0.02:
		crf = 24
	default:
		crf = 26
	}

	// Downscale heuristics, first match wins.
	var rec *config.Resolution
	switch {
	case src.VideoWidth >= 3840 && bpp < 0.05:
		rec = &config.Resolution{Width: 1920, Height: 1080}
	case src.VideoWidth >= 2560 && bpp < 0.04:
		rec = &config.Resolution{Width: 1920, Height: 1080}
	case src.VideoWidth >= 1920 && kbps < 1500:
		rec = &config.Resolution{Width: 1280, Height: 720}
	}

	plan := SmartPlan{
		QualityFactor: crf,
		MaxRes:        rec,
		SourceKbps:    kbps,
		BitsPerPixel:  bpp,
	}

	if src.DurationSeconds > 0 {
		// Rule of thumb: CRF 18 keeps ~60% of the source bitrate, each CRF
		// step above that keeps ~75% of the previous.
		estRatio := 0.6 * math.Pow(0.75, float64(crf-18))
		estKbps := kbps * estRatio
		plan.EstimatedOutputMB = estKbps * 1000 * src.DurationSeconds / (8 * 1024 * 1024)
	}
	return plan
}

// ApplySmartPlan returns a copy of the preset template with the analyzer's
// quality factor and resolution cap filled in.
func ApplySmartPlan(template config.Encode, plan SmartPlan) config.Encode {
	template.Goal = config.QualityGoal(plan.QualityFactor)
	template.MaxRes = plan.MaxRes
	return template
}
