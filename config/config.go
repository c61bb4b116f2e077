package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// App holds process-wide settings. Loaded once at startup; the encode
// pipeline only ever reads it.
type App struct {
	FFmpegBin    string        `mapstructure:"FFMPEG_BIN"`
	FFprobeBin   string        `mapstructure:"FFPROBE_BIN"`
	ProbeTimeout time.Duration `mapstructure:"PROBE_TIMEOUT"`

	// SafetyMargin discounts the theoretical bitrate budget so size-targeted
	// output lands under the user's figure. RetryMargin is the tighter budget
	// used after an overshoot.
	SafetyMargin float64 `mapstructure:"SAFETY_MARGIN"`
	RetryMargin  float64 `mapstructure:"RETRY_MARGIN"`

	// Minimum free resources required before a job starts.
	MinFreeDiskBytes uint64 `mapstructure:"MIN_FREE_DISK"`
	MinFreeMemBytes  uint64 `mapstructure:"MIN_FREE_MEM"`

	// LogFile receives structured logs. Empty disables logging; the TUI owns
	// the terminal so logs never go to stdout/stderr.
	LogFile string `mapstructure:"LOG_FILE"`

	UpdateURL string `mapstructure:"UPDATE_URL"`
}

// Load reads settings from an optional fftoolbox.yaml and FFTOOLBOX_* env vars.
func Load() (*App, error) {
	vp := viper.New()

	vp.SetDefault("FFMPEG_BIN", "ffmpeg")
	vp.SetDefault("FFPROBE_BIN", "ffprobe")
	vp.SetDefault("PROBE_TIMEOUT", 30*time.Second)
	vp.SetDefault("SAFETY_MARGIN", DefaultSafetyMargin)
	vp.SetDefault("RETRY_MARGIN", RetrySafetyMargin)
	vp.SetDefault("MIN_FREE_DISK", 500*1024*1024)
	vp.SetDefault("MIN_FREE_MEM", 200*1024*1024)
	vp.SetDefault("LOG_FILE", "")
	vp.SetDefault("UPDATE_URL", "https://raw.githubusercontent.com/fftoolbox/fftoolbox/main/VERSION")

	vp.SetConfigName("fftoolbox")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(".")
	vp.AddConfigPath("$HOME/.config/fftoolbox")

	if err := vp.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	vp.SetEnvPrefix("FFTOOLBOX")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	var app App
	if err := vp.Unmarshal(&app); err != nil {
		return nil, err
	}
	return &app, nil
}
