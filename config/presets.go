package config

// Preset names a catalog entry.
type Preset string

const (
	PresetSmart          Preset = "smart"
	PresetWhatsApp       Preset = "whatsapp"
	PresetTelegram       Preset = "telegram"
	PresetResolveCleanup Preset = "resolve-cleanup"
	PresetArchiveH265    Preset = "archive-h265"
	PresetWeb1080p       Preset = "web-1080p"
	PresetCompressLight  Preset = "compress-light"
	PresetCompressMedium Preset = "compress-medium"
	PresetCompressHeavy  Preset = "compress-heavy"
	PresetTargetSize     Preset = "target-size"
	PresetTargetPercent  Preset = "target-percent"
	PresetQuick          Preset = "quick"
	PresetFixAudio       Preset = "fix-audio"
)

// PresetEntry is a plain data record: an Encode template plus the metadata
// the CLI prints. No behavior attached; the table is built once and never
// mutated.
type PresetEntry struct {
	Key         Preset
	Name        string
	Group       string
	Description string
	Tip         string
	Template    Encode
}

var presetCatalog = []PresetEntry{
	{
		Key: PresetSmart, Group: "Smart",
		Name:        "Smart Recommended (auto-optimized)",
		Description: "Analyzes the source and computes the ideal CRF + resolution",
		Tip:         "Quality factor and downscale are derived from the source's bits per pixel.",
		Template: Encode{
			VideoCodec: "libx264", Goal: QualityGoal(23), Speed: "slow",
			AudioCodec: "aac", AudioKbps: 128,
		},
	},
	{
		Key: PresetWhatsApp, Group: "Sharing",
		Name:        "WhatsApp (< 100 MB, 720p)",
		Description: "Two-pass, stays safely under 100 MB, 720p, H.264, AAC",
		Tip:         "WhatsApp's video preview limit is 100 MB. Two-pass keeps you under.",
		Template: Encode{
			VideoCodec: "libx264", Goal: SizeGoal(95), Speed: "slow",
			AudioCodec: "aac", AudioKbps: 96,
			MaxRes: &Resolution{1280, 720}, TwoPass: true,
		},
	},
	{
		Key: PresetTelegram, Group: "Sharing",
		Name:        "Telegram (1080p, great quality)",
		Description: "1080p max, H.264 CRF 22, AAC 192",
		Tip:         "Telegram keeps quality intact and supports up to 2 GB.",
		Template: Encode{
			VideoCodec: "libx264", Goal: QualityGoal(22), Speed: "slow",
			AudioCodec: "aac", AudioKbps: 192,
			MaxRes: &Resolution{1920, 1080},
		},
	},
	{
		Key: PresetResolveCleanup, Group: "Professional",
		Name:        "DaVinci Resolve Cleanup",
		Description: "ProRes/DNxHR to H.264 CRF 18, near-lossless, keeps 4K",
		Tip:         "CRF 18 is near-lossless. Shrinks 10 GB exports to 200-800 MB.",
		Template: Encode{
			VideoCodec: "libx264", Goal: QualityGoal(18), Speed: "slow",
			AudioCodec: "aac", AudioKbps: 192,
		},
	},
	{
		Key: PresetArchiveH265, Group: "Professional",
		Name:        "Archive (H.265 / HEVC)",
		Description: "CRF 18, ~40% smaller than H.264, Apple HVC1 tag",
		Tip:         "Best long-term archive format for modern devices.",
		Template: Encode{
			VideoCodec: "libx265", Goal: QualityGoal(18), Speed: "slow",
			AudioCodec: "aac", AudioKbps: 192,
		},
	},
	{
		Key: PresetWeb1080p, Group: "Web",
		Name:        "Web / Social Media (1080p)",
		Description: "H.264 CRF 23, 1080p max, fast-start",
		Tip:         "Safe choice for any online platform.",
		Template: Encode{
			VideoCodec: "libx264", Goal: QualityGoal(23), Speed: "slow",
			AudioCodec: "aac", AudioKbps: 128,
			MaxRes: &Resolution{1920, 1080},
		},
	},
	{
		Key: PresetCompressLight, Group: "Compression",
		Name:        "Compress Light (~25% smaller)",
		Description: "CRF 20, barely noticeable quality loss",
		Tip:         "Almost imperceptible quality difference.",
		Template: Encode{
			VideoCodec: "libx264", Goal: QualityGoal(20), Speed: "medium",
			AudioCodec: "aac", AudioKbps: 192,
		},
	},
	{
		Key: PresetCompressMedium, Group: "Compression",
		Name:        "Compress Medium (~50% smaller)",
		Description: "CRF 26, noticeable but very watchable",
		Tip:         "Good balance of size and quality.",
		Template: Encode{
			VideoCodec: "libx264", Goal: QualityGoal(26), Speed: "medium",
			AudioCodec: "aac", AudioKbps: 128,
		},
	},
	{
		Key: PresetCompressHeavy, Group: "Compression",
		Name:        "Compress Heavy (~75% smaller)",
		Description: "CRF 32, clear quality loss, 720p max",
		Tip:         "Maximum compression. Pixelation may be visible.",
		Template: Encode{
			VideoCodec: "libx264", Goal: QualityGoal(32), Speed: "fast",
			AudioCodec: "aac", AudioKbps: 64,
			MaxRes: &Resolution{1280, 720},
		},
	},
	{
		Key: PresetTargetSize, Group: "Exact Control",
		Name:        "Target Exact File Size (MB)",
		Description: "Two-pass with 96% safety margin, never exceeds target",
		Tip:         "Pass -target-mb to set the size.",
		Template: Encode{
			VideoCodec: "libx264", Goal: SizeGoal(100), Speed: "slow",
			AudioCodec: "aac", AudioKbps: 128, TwoPass: true,
		},
	},
	{
		Key: PresetTargetPercent, Group: "Exact Control",
		Name:        "Target % Compression",
		Description: "Output is a chosen fraction of the source size",
		Tip:         "Pass -target-percent, e.g. 30 keeps ~30% of the original.",
		Template: Encode{
			VideoCodec: "libx264", Goal: PercentGoal(0.30), Speed: "slow",
			AudioCodec: "aac", AudioKbps: 128, TwoPass: true,
		},
	},
	{
		Key: PresetQuick, Group: "Utility",
		Name:        "Quick Convert (fast encode)",
		Description: "H.264 CRF 23, medium speed",
		Tip:         "Fast encode, good quality. Ideal for batch jobs.",
		Template: Encode{
			VideoCodec: "libx264", Goal: QualityGoal(23), Speed: "medium",
			AudioCodec: "aac", AudioKbps: 128,
		},
	},
	{
		Key: PresetFixAudio, Group: "Utility",
		Name:        "Fix Audio (copy video)",
		Description: "Video stream copied unchanged, audio to AAC 192",
		Tip:         "Almost instant, only audio is processed.",
		Template: Encode{
			VideoCodec: "copy", Goal: CopyGoal(),
			AudioCodec: "aac", AudioKbps: 192,
		},
	},
}

// AvailablePresets returns the catalog in display order.
func AvailablePresets() []PresetEntry {
	out := make([]PresetEntry, len(presetCatalog))
	copy(out, presetCatalog)
	return out
}

// GetPreset looks up a catalog entry by key.
func GetPreset(key Preset) (PresetEntry, bool) {
	for _, e := range presetCatalog {
		if e.Key == key {
			return e, true
		}
	}
	return PresetEntry{}, false
}

// PresetDescription returns the one-line description for a preset, or an
// empty string for unknown keys.
func PresetDescription(key Preset) string {
	e, ok := GetPreset(key)
	if !ok {
		return ""
	}
	return e.Description
}
