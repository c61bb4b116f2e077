package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"fftoolbox/config"
	"fftoolbox/encoder"
	"fftoolbox/probe"
)

// State represents the current application state
type State int

const (
	StateIdle State = iota
	StateEncoding
	StateDone
	StateError
)

// FileResult pairs one input with what happened to it, for the summary view.
type FileResult struct {
	Input       string
	SourceBytes int64
	Outcome     encoder.Outcome
	SkipReason  string
}

type batchResult struct {
	results []FileResult
}

// BatchStartedMsg is sent once the encode goroutine is running.
type BatchStartedMsg struct{}

// BatchDoneMsg carries every file's result when the queue is drained.
type BatchDoneMsg batchResult

type batchErrorMsg struct{ err error }

// TickMsg is sent periodically to refresh the progress display.
type TickMsg time.Time

// UpdateNoticeMsg carries the result of the background version check. Empty
// means up to date or unreachable.
type UpdateNoticeMsg string

// Model is the Bubble Tea model for the TUI
type Model struct {
	App        *config.App
	Files      []string
	Preset     config.PresetEntry
	Encode     config.Encode
	OutputDir  string
	Controller *encoder.Controller
	Prober     *probe.Prober
	Log        zerolog.Logger

	State     State
	Progress  progress.Model
	LogView   viewport.Model
	ShowLogs  bool
	Width     int
	Height    int
	StartTime time.Time

	Status       encoder.Status
	Results      []FileResult
	ErrorMessage string
	UpdateNotice string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan batchResult
}

// NewModel creates a new TUI model
func NewModel(app *config.App, files []string, preset config.PresetEntry, enc config.Encode, outputDir string, log zerolog.Logger) Model {
	prog := progress.New(
		progress.WithGradient("#7C3AED", "#10B981"),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	vp := viewport.New(80, 12)
	if app.LogFile != "" {
		vp.SetContent("Structured logs: " + app.LogFile)
	} else {
		vp.SetContent("Logging disabled (set FFTOOLBOX_LOG_FILE to capture encoder output)")
	}

	inv := encoder.NewFFmpegInvoker(app.FFmpegBin, log)
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		App:        app,
		Files:      files,
		Preset:     preset,
		Encode:     enc,
		OutputDir:  outputDir,
		Controller: encoder.NewController(inv, app, log),
		Prober:     probe.NewProber(app.FFprobeBin, app.ProbeTimeout),
		Log:        log,
		State:      StateIdle,
		Progress:   prog,
		LogView:    vp,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan batchResult, 1),
	}
}

// Init initializes the Bubble Tea program
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.startBatch(),
	)
}

// startBatch probes and encodes the queue on its own goroutine. Per-file
// failures are recorded and the queue continues.
func (m Model) startBatch() tea.Cmd {
	ctx := m.ctx
	done := m.done

	files := m.Files
	prober := m.Prober
	ctrl := m.Controller
	preset := m.Preset
	enc := m.Encode
	outputDir := m.OutputDir

	return func() tea.Msg {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return batchErrorMsg{fmt.Errorf("cannot create output dir: %w", err)}
		}

		go func() {
			// Probe everything up front so the batch size is known; unprobable
			// files are skipped, not fatal.
			results := make([]FileResult, len(files))
			var jobs []encoder.Job
			var jobIdx []int
			for i, input := range files {
				results[i].Input = input
				src, err := prober.Probe(ctx, input)
				if err != nil {
					results[i].SkipReason = err.Error()
					continue
				}
				results[i].SourceBytes = src.ContainerSizeBytes

				fileEnc := enc
				if preset.Key == config.PresetSmart {
					fileEnc = encoder.ApplySmartPlan(enc, encoder.ComputeSmartPlan(src))
				}

				jobs = append(jobs, encoder.Job{
					Input:  input,
					Output: outputPath(outputDir, input, preset.Key),
					Config: fileEnc,
					Source: src,
				})
				jobIdx = append(jobIdx, i)
			}

			outcomes := ctrl.RunBatch(ctx, jobs)
			for j, out := range outcomes {
				results[jobIdx[j]].Outcome = out
			}
			done <- batchResult{results: results}
		}()

		return BatchStartedMsg{}
	}
}

func outputPath(dir, input string, key config.Preset) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.mp4", stem, key))
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForBatch(done chan batchResult) tea.Cmd {
	return func() tea.Msg {
		return BatchDoneMsg(<-done)
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "l":
			m.ShowLogs = !m.ShowLogs
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 20
		m.LogView.Width = msg.Width - 4
		logHeight := msg.Height - 20
		if logHeight < 0 {
			logHeight = 0
		}
		m.LogView.Height = logHeight

	case BatchStartedMsg:
		m.State = StateEncoding
		m.StartTime = time.Now()
		cmds = append(cmds, tickCmd(), waitForBatch(m.done))

	case batchErrorMsg:
		m.State = StateError
		m.ErrorMessage = msg.err.Error()
		return m, nil

	case BatchDoneMsg:
		m.Results = msg.results
		m.State = StateDone
		return m, nil

	case UpdateNoticeMsg:
		m.UpdateNotice = string(msg)

	case TickMsg:
		if m.State == StateEncoding {
			m.Status = m.Controller.Status()
			cmds = append(cmds, tickCmd())
		}
	}

	if m.ShowLogs {
		var cmd tea.Cmd
		m.LogView, cmd = m.LogView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
