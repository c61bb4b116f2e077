package config

// DefaultSafetyMargin is the multiplicative discount applied to the bitrate
// budget for a first size-targeted attempt. It absorbs container overhead,
// B-frame overhead and audio variance so output lands under the target.
const DefaultSafetyMargin = 0.96

// RetrySafetyMargin is the tighter budget used for the single retry after a
// verified overshoot.
const RetrySafetyMargin = 0.90

// GoalKind selects which encode intent is active. Exactly one kind applies
// per job.
type GoalKind int

const (
	// GoalConstantQuality encodes at a fixed quality factor (CRF).
	GoalConstantQuality GoalKind = iota
	// GoalTargetSize encodes two-pass so output stays at or under a size.
	GoalTargetSize
	// GoalTargetPercent is a size target expressed as a fraction of the
	// source size. Resolved to GoalTargetSize before estimation.
	GoalTargetPercent
	// GoalStreamCopy passes the video stream through and re-encodes audio.
	GoalStreamCopy
)

// Goal is the user-selected encode intent. Value type; derive adjusted copies
// with WithMargin/Resolve instead of mutating shared state.
type Goal struct {
	Kind GoalKind

	// QualityFactor is the CRF for GoalConstantQuality (0-51, lower = larger,
	// higher fidelity).
	QualityFactor int

	// TargetMB and SafetyMargin apply to GoalTargetSize.
	TargetMB     float64
	SafetyMargin float64

	// FractionOfSource applies to GoalTargetPercent, in (0,1].
	FractionOfSource float64
}

// QualityGoal returns a constant-quality goal.
func QualityGoal(crf int) Goal {
	return Goal{Kind: GoalConstantQuality, QualityFactor: crf}
}

// SizeGoal returns a target-size goal with the default safety margin.
func SizeGoal(targetMB float64) Goal {
	return Goal{Kind: GoalTargetSize, TargetMB: targetMB, SafetyMargin: DefaultSafetyMargin}
}

// PercentGoal returns a goal targeting fraction*sourceSize megabytes.
func PercentGoal(fraction float64) Goal {
	return Goal{Kind: GoalTargetPercent, FractionOfSource: fraction}
}

// CopyGoal returns a stream-copy goal.
func CopyGoal() Goal {
	return Goal{Kind: GoalStreamCopy}
}

// Resolve converts a percent target into a concrete size target using the
// source container size. Other kinds pass through unchanged.
func (g Goal) Resolve(sourceSizeBytes int64) Goal {
	if g.Kind != GoalTargetPercent {
		return g
	}
	resolved := SizeGoal(float64(sourceSizeBytes) / 1024 / 1024 * g.FractionOfSource)
	return resolved
}

// WithMargin returns a copy of a size goal with an adjusted safety margin.
func (g Goal) WithMargin(margin float64) Goal {
	g.SafetyMargin = margin
	return g
}

// Resolution is a width/height pair used as a downscale-only cap.
type Resolution struct {
	Width  int
	Height int
}

// Encode is the resolved, immutable plan for one job.
type Encode struct {
	// VideoCodec is the ffmpeg encoder name (libx264, libx265, ...).
	VideoCodec string
	Goal       Goal
	// Speed is the encoder preset (ultrafast..veryslow). Ignored for copy.
	Speed string

	AudioCodec string
	AudioKbps  int

	// MaxRes caps output resolution. Nil keeps the source resolution. Never
	// causes upscaling.
	MaxRes *Resolution

	Deinterlace bool
	Denoise     bool

	TwoPass bool

	// AllAudioTracks maps every audio track instead of just the first.
	AllAudioTracks bool
}
