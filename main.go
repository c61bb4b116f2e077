package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"fftoolbox/config"
	"fftoolbox/tui"
	"fftoolbox/update"
)

func main() {
	presetFlag := flag.String("preset", "smart", "Encoding preset (see -list-presets)")
	listPresets := flag.Bool("list-presets", false, "List all available presets and exit")
	targetMB := flag.Float64("target-mb", 0, "Target output size in MB (with -preset=target-size)")
	targetPercent := flag.Float64("target-percent", 0, "Target output size as % of the source (with -preset=target-percent)")
	crfFlag := flag.Int("crf", -1, "Override the preset's quality factor (0-51)")
	outputDir := flag.String("output", "converted", "Output directory")

	flag.Usage = func() {
		fmt.Println("Usage: fftoolbox [options] <input-file> [more files...]")
		fmt.Println()
		fmt.Println("Batch video transcoder built on FFmpeg.")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Presets:")
		for _, e := range config.AvailablePresets() {
			fmt.Printf("  %-16s %s\n", e.Key, e.Description)
		}
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  fftoolbox movie.mkv                                   # Smart preset")
		fmt.Println("  fftoolbox -preset=whatsapp clip.mp4                   # Fit under 100 MB")
		fmt.Println("  fftoolbox -preset=target-size -target-mb=50 clip.mp4  # Exact size")
		fmt.Println("  fftoolbox -preset=target-percent -target-percent=30 *.mp4")
	}

	flag.Parse()

	if *listPresets {
		fmt.Println("Available presets:")
		fmt.Println()
		group := ""
		for _, e := range config.AvailablePresets() {
			if e.Group != group {
				group = e.Group
				fmt.Printf("%s\n", group)
			}
			fmt.Printf("  %-16s %s\n", e.Key, e.Name)
			fmt.Printf("  %-16s %s\n", "", e.Description)
			if e.Tip != "" {
				fmt.Printf("  %-16s Tip: %s\n", "", e.Tip)
			}
			fmt.Println()
		}
		os.Exit(0)
	}

	files := flag.Args()
	if len(files) < 1 {
		flag.Usage()
		os.Exit(1)
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: input file not found: %s\n", f)
			os.Exit(1)
		}
	}

	entry, ok := config.GetPreset(config.Preset(strings.ToLower(*presetFlag)))
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown preset '%s'\n", *presetFlag)
		fmt.Fprintf(os.Stderr, "Run fftoolbox -list-presets to see the catalog.\n")
		os.Exit(1)
	}

	app, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad configuration: %v\n", err)
		os.Exit(1)
	}

	enc := entry.Template
	switch entry.Key {
	case config.PresetTargetSize:
		if *targetMB <= 0 {
			fmt.Fprintln(os.Stderr, "Error: -preset=target-size requires -target-mb")
			os.Exit(1)
		}
		enc.Goal = config.SizeGoal(*targetMB).WithMargin(app.SafetyMargin)
	case config.PresetTargetPercent:
		if *targetPercent <= 0 || *targetPercent > 100 {
			fmt.Fprintln(os.Stderr, "Error: -preset=target-percent requires -target-percent in (0, 100]")
			os.Exit(1)
		}
		enc.Goal = config.PercentGoal(*targetPercent / 100)
	}
	if *crfFlag >= 0 {
		if *crfFlag > 51 {
			fmt.Fprintln(os.Stderr, "Error: -crf must be in 0-51")
			os.Exit(1)
		}
		if enc.Goal.Kind != config.GoalConstantQuality {
			fmt.Fprintln(os.Stderr, "Error: -crf only applies to quality presets")
			os.Exit(1)
		}
		enc.Goal = config.QualityGoal(*crfFlag)
	}

	log := openLogger(app.LogFile)

	model := tui.NewModel(app, files, entry, enc, *outputDir, log)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Best effort; never blocks or serializes with the encode pipeline.
	go func() {
		if notice := update.Check(context.Background(), app.UpdateURL, log); notice != "" {
			p.Send(tui.UpdateNoticeMsg(notice))
		}
	}()

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Print the summary to the normal terminal after the alt screen closes,
	// so it survives in scrollback.
	if m, ok := final.(tui.Model); ok && m.State == tui.StateDone {
		fmt.Print(m.SummaryText())
	}
}

// openLogger writes structured logs to the configured file. The TUI owns the
// terminal, so an empty path means logging is off entirely.
func openLogger(path string) zerolog.Logger {
	if path == "" {
		return zerolog.Nop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(f).With().Timestamp().Logger()
}
