package encoder

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Invoker runs one encoder process to completion, feeding every status line
// through fn. The controller depends on this boundary, not on os/exec, so
// the two-pass state machine is testable without a real encoder.
type Invoker interface {
	Invoke(ctx context.Context, args []string, fn func(line string)) error
}

// FFmpegInvoker runs the real ffmpeg binary. Stdout is discarded; stderr is
// the line-oriented progress/diagnostic stream.
type FFmpegInvoker struct {
	Bin string
	Log zerolog.Logger
}

// NewFFmpegInvoker returns an invoker for the given ffmpeg binary name.
func NewFFmpegInvoker(bin string, log zerolog.Logger) *FFmpegInvoker {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpegInvoker{Bin: bin, Log: log}
}

// Invoke starts the process, drains stderr line by line until the stream
// closes, then waits on the exit status. Reading terminates with the stream,
// so a dead process never stalls the caller.
func (iv *FFmpegInvoker) Invoke(ctx context.Context, args []string, fn func(line string)) error {
	cmd := exec.CommandContext(ctx, iv.Bin, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	iv.Log.Debug().Str("cmd", iv.Bin+" "+strings.Join(args, " ")).Msg("starting encoder")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", iv.Bin, err)
	}

	scanner := bufio.NewScanner(stderr)
	// Some builds emit very long metadata lines; the default 64KB token
	// limit is not enough.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lastLines []string
	for scanner.Scan() {
		line := scanner.Text()
		if fn != nil {
			fn(line)
		}
		lastLines = append(lastLines, line)
		if len(lastLines) > 30 {
			lastLines = lastLines[1:]
		}
	}

	if err := cmd.Wait(); err != nil {
		iv.Log.Error().Err(err).Strs("tail", lastLines).Msg("encoder exited non-zero")
		return fmt.Errorf("%s: %w", iv.Bin, err)
	}
	return nil
}
