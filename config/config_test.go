package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	app, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ffmpeg", app.FFmpegBin)
	assert.Equal(t, "ffprobe", app.FFprobeBin)
	assert.Equal(t, 30*time.Second, app.ProbeTimeout)
	assert.Equal(t, DefaultSafetyMargin, app.SafetyMargin)
	assert.Equal(t, RetrySafetyMargin, app.RetryMargin)
	assert.NotZero(t, app.MinFreeDiskBytes)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FFTOOLBOX_FFMPEG_BIN", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("FFTOOLBOX_LOG_FILE", "/tmp/fftoolbox.log")

	app, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", app.FFmpegBin)
	assert.Equal(t, "/tmp/fftoolbox.log", app.LogFile)
}
