// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/winfunc/deepreasoning/internal/api"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT - bottom status bar
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusReasoning
	StatusAnswering
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusReasoning:
		return "Reasoning..."
	case StatusAnswering:
		return "Answering..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar renders connection, usage and shortcut hints at the bottom
// of the chat screen.
type StatusBar struct {
	Status        Status
	ServerURL     string
	Width         int
	ShowShortcuts bool

	// ReasoningStart is set while the reasoning phase streams and drives
	// the elapsed timer; ReasoningElapsed freezes it once the phase ends.
	ReasoningStart   time.Time
	ReasoningElapsed time.Duration

	// Usage from the last completed turn, nil until one finishes.
	Usage *api.CombinedUsage

	theme *styles.Theme
}

// NewStatusBar creates a StatusBar in the ready state.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// StartReasoning begins the reasoning timer.
func (s *StatusBar) StartReasoning() {
	s.Status = StatusReasoning
	s.ReasoningStart = time.Now()
	s.ReasoningElapsed = 0
}

// FinishReasoning freezes the reasoning timer and switches to answering.
func (s *StatusBar) FinishReasoning() {
	if !s.ReasoningStart.IsZero() {
		s.ReasoningElapsed = time.Since(s.ReasoningStart)
	}
	s.Status = StatusAnswering
}

// SetUsage records usage for the last completed turn.
func (s *StatusBar) SetUsage(usage *api.CombinedUsage) {
	s.Usage = usage
}

// elapsed returns the reasoning duration to display: live while the
// reasoning phase streams, frozen afterwards.
func (s *StatusBar) elapsed() time.Duration {
	if s.Status == StatusReasoning && !s.ReasoningStart.IsZero() {
		return time.Since(s.ReasoningStart)
	}
	return s.ReasoningElapsed
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders a compact bar: status plus elapsed only.
func (s *StatusBar) viewNarrow() string {
	parts := []string{s.statusStyle().Render(s.Status.String())}

	if d := s.elapsed(); d > 0 {
		parts = append(parts, s.theme.StatusValue.Render(formatElapsed(d)))
	}

	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(strings.Join(parts, sep))
}

// viewWide renders the full bar:
// status | thought 12.3s | 1,234 tok | $0.0123        ^N new ^K chats ^C stop
func (s *StatusBar) viewWide() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	leftParts := []string{s.statusStyle().Render(s.Status.String())}

	if s.ServerURL != "" {
		leftParts = append(leftParts, s.theme.StatusValue.Render(s.ServerURL))
	}

	if d := s.elapsed(); d > 0 {
		label := "thought " + formatElapsed(d)
		if s.Status == StatusReasoning {
			label = "thinking " + formatElapsed(d)
		}
		leftParts = append(leftParts, lipgloss.NewStyle().
			Foreground(styles.ThinkingFg).
			Render(label))
	}

	if s.Usage != nil {
		tokens := s.Usage.DeepSeekUsage.TotalTokens + s.Usage.AnthropicUsage.TotalTokens
		if tokens > 0 {
			leftParts = append(leftParts, s.theme.StatusValue.Render(
				fmt.Sprintf("%s tok", fmtNumber(tokens))))
		}
		if s.Usage.TotalCost != "" {
			leftParts = append(leftParts, s.theme.UsageCost.Render("$"+s.Usage.TotalCost))
		}
	}

	leftSection := strings.Join(leftParts, sep)

	rightSection := ""
	if s.ShowShortcuts {
		rightSection = s.renderShortcuts()
	}

	spacing := s.Width - lipgloss.Width(leftSection) - lipgloss.Width(rightSection) - 2
	if spacing < 1 {
		spacing = 1
	}

	result := leftSection + strings.Repeat(" ", spacing) + rightSection

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

func (s *StatusBar) renderShortcuts() string {
	keyStyle := s.theme.ShortcutKey
	descStyle := s.theme.ShortcutDesc

	shortcuts := []string{
		keyStyle.Render("^N") + descStyle.Render("new"),
		keyStyle.Render("^K") + descStyle.Render("chats"),
		keyStyle.Render("^T") + descStyle.Render("thinking"),
		keyStyle.Render("^C") + descStyle.Render("stop"),
	}
	return strings.Join(shortcuts, " ")
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	case StatusReasoning:
		return lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	case StatusAnswering:
		return lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}

// formatElapsed renders a duration as "3.2s" below a minute, "1m04s" above.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	sec := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, sec)
}

// fmtNumber formats an int with thousand separators.
func fmtNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 0 {
		str = str[1:]
	}
	var out strings.Builder
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	if n < 0 {
		return "-" + out.String()
	}
	return out.String()
}
