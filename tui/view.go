package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - modern, readable
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Violet
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess   = lipgloss.Color("#10B981") // Emerald
	colorError     = lipgloss.Color("#EF4444") // Red
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorText      = lipgloss.Color("#F9FAFB") // White
	colorTextDim   = lipgloss.Color("#9CA3AF") // Light gray
	colorBorder    = lipgloss.Color("#374151") // Dark gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Background(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true).
				MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			MarginTop(1)

	statLabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(10)

	statValueStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	fileBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2).
			MarginTop(1)

	fileLabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(8)

	filePathStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			MarginTop(1)
)

// formatSpeed renders the realtime multiplier, or a placeholder before the
// first reading arrives.
func formatSpeed(speed float64) string {
	if speed <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.2fx", speed)
}

// formatETADisplay handles unavailable ETA gracefully
func formatETADisplay(eta time.Duration, available bool) string {
	if !available || eta < 0 {
		return "—"
	}
	return formatDuration(eta)
}

// formatFraction caps the display at 99.9% until the pass truly finishes.
func formatFraction(frac float64) string {
	if frac <= 0 {
		return "..."
	}
	pct := frac * 100
	if pct > 99.9 {
		pct = 99.9
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// formatSavings compares output size against source size.
func formatSavings(inBytes, outBytes int64) string {
	if inBytes <= 0 || outBytes <= 0 {
		return "—"
	}
	ratio := float64(outBytes) / float64(inBytes) * 100
	return fmt.Sprintf("%.1f%% of original", ratio)
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	title := titleStyle.Render(" ⚡ fftoolbox ")
	b.WriteString(title + "\n")

	switch m.State {
	case StateIdle:
		b.WriteString("\n" + statValueStyle.Render("  Probing input files...") + "\n")

	case StateEncoding:
		b.WriteString(m.renderEncodingView())

	case StateDone:
		b.WriteString(m.renderDoneView())

	case StateError:
		b.WriteString(m.renderErrorView())
	}

	help := helpStyle.Render("  [L] Toggle logs  •  [Q] Quit")
	b.WriteString("\n" + help + "\n")

	return b.String()
}

func (m Model) renderEncodingView() string {
	var b strings.Builder
	st := m.Status

	b.WriteString("\n")

	frac := st.Fraction
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	progressBar := m.Progress.ViewAs(frac)
	b.WriteString("  " + progressBar + "  " + statValueStyle.Render(formatFraction(st.Fraction)) + "\n")

	elapsed := time.Since(m.StartTime).Round(time.Second)

	var lines []string
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
		statLabelStyle.Render("Phase"),
		statValueStyle.Render(st.Phase),
		lipgloss.NewStyle().Width(8).Render(""),
		statLabelStyle.Render("File"),
		statValueStyle.Render(fmt.Sprintf("%d / %d", st.Index, st.Total)),
	))
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
		statLabelStyle.Render("Speed"),
		statValueStyle.Render(formatSpeed(st.Speed)),
		lipgloss.NewStyle().Width(8).Render(""),
		statLabelStyle.Render("ETA"),
		statValueStyle.Render(formatETADisplay(st.ETA, st.ETAOK)),
	))
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
		statLabelStyle.Render("Elapsed"),
		statValueStyle.Render(formatDuration(elapsed)),
	))
	b.WriteString(statsBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	b.WriteString("\n")

	maxPathLen := m.Width - 16
	if maxPathLen < 20 {
		maxPathLen = 60
	}
	fileLines := fileLabelStyle.Render("Input") + filePathStyle.Render(truncatePath(st.File, maxPathLen)) + "\n" +
		fileLabelStyle.Render("Preset") + filePathStyle.Render(m.Preset.Name)
	b.WriteString(fileBoxStyle.Render(fileLines))

	if m.ShowLogs {
		b.WriteString("\n")
		b.WriteString(sectionHeaderStyle.Render("  Encoder Output") + "\n")
		b.WriteString(logBoxStyle.Render(m.LogView.View()))
	}

	return b.String()
}

func (m Model) renderDoneView() string {
	var b strings.Builder

	elapsed := time.Since(m.StartTime).Round(time.Second)
	var totalIn, totalOut int64
	var encoded, failed, skipped int

	b.WriteString("\n")
	for _, r := range m.Results {
		name := truncatePath(r.Input, 48)
		switch {
		case r.SkipReason != "":
			skipped++
			b.WriteString(warningStyle.Render("  ⊘ "+name) + filePathStyle.Render("  "+r.SkipReason) + "\n")
		case r.Outcome.Failure != nil:
			failed++
			b.WriteString(errorStyle.Render("  ✗ "+name) + filePathStyle.Render("  "+r.Outcome.Failure.Error()) + "\n")
		default:
			encoded++
			totalIn += r.SourceBytes
			totalOut += r.Outcome.OutputSizeBytes
			note := formatBytes(r.Outcome.OutputSizeBytes)
			if r.Outcome.Retried {
				note += "  (retried)"
			}
			if r.Outcome.OverTarget {
				note += "  still over target"
			}
			b.WriteString(successStyle.Render("  ✓ "+name) + filePathStyle.Render("  "+note) + "\n")
		}
	}

	var lines []string
	lines = append(lines,
		statLabelStyle.Render("Encoded")+statValueStyle.Render(fmt.Sprintf("%d ok, %d failed, %d skipped", encoded, failed, skipped)))
	lines = append(lines,
		statLabelStyle.Render("Time")+statValueStyle.Render(formatDuration(elapsed)))
	if encoded > 0 {
		lines = append(lines,
			statLabelStyle.Render("In")+statValueStyle.Render(formatBytes(totalIn)))
		lines = append(lines,
			statLabelStyle.Render("Out")+statValueStyle.Render(formatBytes(totalOut)))
		lines = append(lines,
			statLabelStyle.Render("Saved")+statValueStyle.Render(formatSavings(totalIn, totalOut)))
	}
	b.WriteString(statsBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	b.WriteString("\n")

	if m.UpdateNotice != "" {
		b.WriteString(warningStyle.Render("  "+m.UpdateNotice) + "\n")
	}

	return b.String()
}

// SummaryText is the plain batch summary printed to the terminal after the
// alt screen closes, so the results survive in scrollback.
func (m Model) SummaryText() string {
	var b strings.Builder
	var totalIn, totalOut int64
	var encoded int

	for _, r := range m.Results {
		name := r.Input
		switch {
		case r.SkipReason != "":
			fmt.Fprintf(&b, "skipped %s: %s\n", name, r.SkipReason)
		case r.Outcome.Failure != nil:
			fmt.Fprintf(&b, "failed  %s: %v\n", name, r.Outcome.Failure)
		default:
			encoded++
			totalIn += r.SourceBytes
			totalOut += r.Outcome.OutputSizeBytes
			fmt.Fprintf(&b, "done    %s -> %s (%s)\n", name, r.Outcome.OutputPath,
				formatBytes(r.Outcome.OutputSizeBytes))
		}
	}
	if encoded > 0 {
		fmt.Fprintf(&b, "total: %s -> %s (%s)\n",
			formatBytes(totalIn), formatBytes(totalOut), formatSavings(totalIn, totalOut))
	}
	return b.String()
}

func (m Model) renderErrorView() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(errorStyle.Render("  ✗ Batch Failed") + "\n\n")

	errBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Padding(0, 2).
		Foreground(colorError).
		Render(m.ErrorMessage)
	b.WriteString(errBox + "\n")

	return b.String()
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Show beginning and end
	if maxLen < 20 {
		return path[:maxLen-3] + "..."
	}
	half := (maxLen - 5) / 2
	return path[:half] + " ... " + path[len(path)-half:]
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "—"
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
