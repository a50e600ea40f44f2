// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/winfunc/deepreasoning/internal/api"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{59900 * time.Millisecond, "59.9s"},
		{time.Minute, "1m00s"},
		{64 * time.Second, "1m04s"},
		{125 * time.Second, "2m05s"},
	}

	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFmtNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1000, "-1,000"},
	}

	for _, tt := range tests {
		if got := fmtNumber(tt.n); got != tt.want {
			t.Errorf("fmtNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestStatusBarReasoningTimer(t *testing.T) {
	sb := NewStatusBar(styles.NewThemeForMode(true))

	sb.StartReasoning()
	if sb.Status != StatusReasoning {
		t.Errorf("status = %v, want reasoning", sb.Status)
	}

	time.Sleep(10 * time.Millisecond)
	live := sb.elapsed()
	if live <= 0 {
		t.Error("elapsed not ticking during reasoning")
	}

	sb.FinishReasoning()
	if sb.Status != StatusAnswering {
		t.Errorf("status = %v, want answering", sb.Status)
	}

	frozen := sb.ReasoningElapsed
	if frozen <= 0 {
		t.Error("elapsed not frozen on finish")
	}
	time.Sleep(10 * time.Millisecond)
	if sb.elapsed() != frozen {
		t.Error("elapsed kept ticking after reasoning finished")
	}
}

func TestStatusBarViewShowsUsage(t *testing.T) {
	sb := NewStatusBar(styles.NewThemeForMode(true))
	sb.SetWidth(120)
	sb.SetUsage(&api.CombinedUsage{
		TotalCost:      "0.0123",
		DeepSeekUsage:  api.DeepSeekUsage{TotalTokens: 1200},
		AnthropicUsage: api.AnthropicUsage{TotalTokens: 800},
	})

	out := sb.View()
	if !strings.Contains(out, "2,000 tok") {
		t.Errorf("view missing token total: %q", out)
	}
	if !strings.Contains(out, "$0.0123") {
		t.Errorf("view missing cost: %q", out)
	}
}

func TestStatusBarNarrowView(t *testing.T) {
	sb := NewStatusBar(styles.NewThemeForMode(true))
	sb.SetWidth(40)

	out := sb.View()
	if !strings.Contains(out, "Ready") {
		t.Errorf("narrow view missing status: %q", out)
	}
}
