package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"

	"fftoolbox/config"
	"fftoolbox/probe"
)

// FailureKind classifies why a job failed. Encoder and prober outcomes are
// explicit values, not panics threading through unrelated layers.
type FailureKind int

const (
	FailureProbe FailureKind = iota + 1
	FailureEstimation
	FailurePass
	FailureFilesystem
	FailureResources
)

// Failure pairs a kind with the underlying error.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string { return f.Err.Error() }
func (f *Failure) Unwrap() error { return f.Err }

// Outcome is the final result of one job.
type Outcome struct {
	Success         bool
	OutputPath      string
	OutputSizeBytes int64

	// Retried is true when the first size-targeted attempt overshot and the
	// job was re-run once with FinalMargin. OverTarget stays true when even
	// the retry exceeded the target; the result is still accepted (single
	// retry bound) but the caller sees it.
	Retried     bool
	FinalMargin float64
	OverTarget  bool

	Failure *Failure
}

// Job binds one input file to its resolved plan.
type Job struct {
	Input  string
	Output string
	Config config.Encode
	Source *probe.SourceMedia
}

// Status is a point-in-time snapshot of the controller for display.
type Status struct {
	File     string
	Index    int
	Total    int
	Phase    string
	Fraction float64
	Speed    float64
	ETA      time.Duration
	ETAOK    bool
}

// Controller owns the encode state machine: estimate, two passes against a
// scoped statistics directory, size verification, and the single
// overshoot retry with a tighter margin.
type Controller struct {
	inv         Invoker
	log         zerolog.Logger
	retryMargin float64

	minFreeDisk uint64
	minFreeMem  uint64

	mu     sync.Mutex
	status Status

	// Seams for tests; production uses the os defaults.
	statSize func(string) (int64, error)
	makeTemp func() (string, error)
	freeRes  func(dir string, minDisk, minMem uint64) error
}

// NewController wires a controller from app settings.
func NewController(inv Invoker, app *config.App, log zerolog.Logger) *Controller {
	retry := app.RetryMargin
	if retry <= 0 || retry >= 1 {
		retry = config.RetrySafetyMargin
	}
	return &Controller{
		inv:         inv,
		log:         log,
		retryMargin: retry,
		minFreeDisk: app.MinFreeDiskBytes,
		minFreeMem:  app.MinFreeMemBytes,
		statSize: func(path string) (int64, error) {
			info, err := os.Stat(path)
			if err != nil {
				return 0, err
			}
			return info.Size(), nil
		},
		makeTemp: func() (string, error) {
			return os.MkdirTemp("", "fftoolbox-"+shortuuid.New())
		},
		freeRes: checkFreeResources,
	}
}

// Status returns a copy of the current display state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// RunBatch processes jobs sequentially. One file's failure never aborts the
// rest of the queue.
func (c *Controller) RunBatch(ctx context.Context, jobs []Job) []Outcome {
	outcomes := make([]Outcome, 0, len(jobs))
	for i, job := range jobs {
		c.setFile(job.Input, i+1, len(jobs))
		outcomes = append(outcomes, c.EncodeFile(ctx, job))
	}
	return outcomes
}

// EncodeFile runs one job to completion and reports its outcome.
func (c *Controller) EncodeFile(ctx context.Context, job Job) Outcome {
	if err := c.freeRes(filepath.Dir(job.Output), c.minFreeDisk, c.minFreeMem); err != nil {
		return c.fail(job, FailureResources, err)
	}

	goal := job.Config.Goal.Resolve(job.Source.ContainerSizeBytes)

	switch goal.Kind {
	case config.GoalStreamCopy:
		return c.runStreamCopy(ctx, job)
	case config.GoalTargetSize:
		return c.runSizeTargeted(ctx, job, goal)
	default:
		return c.runSinglePass(ctx, job)
	}
}

func (c *Controller) runStreamCopy(ctx context.Context, job Job) Outcome {
	args := BuildArgs(job.Input, job.Output, job.Config,
		job.Source.VideoWidth, job.Source.VideoHeight, 0, 0, "")
	if err := c.runPass(ctx, args, "Remuxing", job.Source.DurationSeconds); err != nil {
		return c.fail(job, FailurePass, err)
	}
	return c.finish(job, Outcome{Success: true})
}

func (c *Controller) runSinglePass(ctx context.Context, job Job) Outcome {
	args := BuildArgs(job.Input, job.Output, job.Config,
		job.Source.VideoWidth, job.Source.VideoHeight, 0, 0, "")
	if err := c.runPass(ctx, args, "Encoding", job.Source.DurationSeconds); err != nil {
		return c.fail(job, FailurePass, err)
	}
	return c.finish(job, Outcome{Success: true})
}

// runSizeTargeted drives the two-pass protocol: estimate, pass 1, pass 2,
// verify the size on disk, and correct an overshoot exactly once with the
// tighter margin. The retry's result is accepted without re-verification,
// bounding worst-case latency at two pass pairs.
func (c *Controller) runSizeTargeted(ctx context.Context, job Job, goal config.Goal) Outcome {
	c.setPhase("Estimating")
	vkbps, err := EstimateVideoBitrateKbps(goal.TargetMB, job.Source.DurationSeconds,
		job.Config.AudioKbps, goal.SafetyMargin)
	if err != nil {
		return c.fail(job, FailureEstimation, err)
	}
	c.log.Info().Float64("target_mb", goal.TargetMB).Float64("margin", goal.SafetyMargin).
		Int("video_kbps", vkbps).Msg("size-targeted encode")

	if err := c.runPassPair(ctx, job, vkbps, "Pass 1/2", "Pass 2/2"); err != nil {
		return c.fail(job, FailurePass, err)
	}

	c.setPhase("Verifying")
	size, err := c.statSize(job.Output)
	if err != nil {
		return c.fail(job, FailureFilesystem, fmt.Errorf("verify output: %w", err))
	}
	actualMB := float64(size) / 1024 / 1024
	if actualMB <= goal.TargetMB {
		return c.finish(job, Outcome{Success: true, FinalMargin: goal.SafetyMargin})
	}

	// Overshoot: rare edge case (B-frames, container overhead). One retry
	// with a tighter budget; whatever it produces is final.
	c.log.Warn().Float64("actual_mb", actualMB).Float64("target_mb", goal.TargetMB).
		Msg("output over target, retrying with tighter margin")
	retryGoal := goal.WithMargin(c.retryMargin)

	c.setPhase("Re-estimating")
	vkbps, err = EstimateVideoBitrateKbps(retryGoal.TargetMB, job.Source.DurationSeconds,
		job.Config.AudioKbps, retryGoal.SafetyMargin)
	if err != nil {
		return c.fail(job, FailureEstimation, err)
	}
	if err := c.runPassPair(ctx, job, vkbps, "Retry P1/2", "Retry P2/2"); err != nil {
		return c.fail(job, FailurePass, err)
	}

	out := Outcome{Success: true, Retried: true, FinalMargin: retryGoal.SafetyMargin}
	if size, err := c.statSize(job.Output); err == nil {
		out.OverTarget = float64(size)/1024/1024 > goal.TargetMB
	}
	return c.finish(job, out)
}

// runPassPair runs both passes against a fresh statistics directory. The
// directory is removed on every exit path; the statistics blob belongs to the
// external encoder and is never interpreted here.
func (c *Controller) runPassPair(ctx context.Context, job Job, vkbps int, label1, label2 string) error {
	tmpDir, err := c.makeTemp()
	if err != nil {
		return fmt.Errorf("create statistics dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	passLog := filepath.Join(tmpDir, "ff2pass")

	srcW, srcH := job.Source.VideoWidth, job.Source.VideoHeight
	args1 := BuildArgs(job.Input, job.Output, job.Config, srcW, srcH, vkbps, 1, passLog)
	if err := c.runPass(ctx, args1, label1, job.Source.DurationSeconds); err != nil {
		return err
	}
	args2 := BuildArgs(job.Input, job.Output, job.Config, srcW, srcH, vkbps, 2, passLog)
	return c.runPass(ctx, args2, label2, job.Source.DurationSeconds)
}

// runPass invokes the encoder once, streaming its status lines through a
// tracker into the shared display state.
func (c *Controller) runPass(ctx context.Context, args []string, phase string, durationSeconds float64) error {
	c.setPhase(phase)
	tracker := NewTracker(durationSeconds)
	return c.inv.Invoke(ctx, args, func(line string) {
		u, ok := tracker.ParseLine(line)
		if !ok {
			return
		}
		c.mu.Lock()
		if u.FractionOK {
			c.status.Fraction = u.Fraction
		}
		if u.SpeedOK {
			c.status.Speed = u.Speed
		}
		if u.ETAOK {
			c.status.ETA = u.ETA
			c.status.ETAOK = true
		}
		c.mu.Unlock()
	})
}

func (c *Controller) fail(job Job, kind FailureKind, err error) Outcome {
	c.log.Error().Err(err).Str("input", job.Input).Int("kind", int(kind)).Msg("job failed")
	c.setPhase("Failed")
	return Outcome{OutputPath: job.Output, Failure: &Failure{Kind: kind, Err: err}}
}

func (c *Controller) finish(job Job, out Outcome) Outcome {
	out.OutputPath = job.Output
	if size, err := c.statSize(job.Output); err == nil {
		out.OutputSizeBytes = size
	}
	c.setPhase("Done")
	return out
}

func (c *Controller) setPhase(phase string) {
	c.mu.Lock()
	c.status.Phase = phase
	c.status.Fraction = 0
	c.status.Speed = 0
	c.status.ETAOK = false
	c.mu.Unlock()
}

func (c *Controller) setFile(file string, index, total int) {
	c.mu.Lock()
	c.status.File = file
	c.status.Index = index
	c.status.Total = total
	c.mu.Unlock()
}
