package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestClampWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{10, MinTerminalWidth},
		{MinTerminalWidth, MinTerminalWidth},
		{80, 80},
		{500, MaxContentWidth},
	}
	for _, tt := range tests {
		if got := ClampWidth(tt.width); got != tt.want {
			t.Errorf("ClampWidth(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("Generate", "stylegen send", []Field{
		{Key: "Endpoint", Value: "ws://h/ws"},
		{Key: "Theme", Value: "Artistic"},
	}).SetWidth(80).Render()

	for _, want := range []string{"GENERATE", "stylegen send", "Endpoint:", "ws://h/ws", "Theme:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "Endpoint:") > strings.Index(out, "Theme:") {
		t.Error("Render() should keep parameter order")
	}
}

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Image generated", []Field{{Key: "Path", Value: "/tmp/a.png"}}),
			want:   []string{"SUCCESS", "Image generated", "Path:", "/tmp/a.png"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Request failed", errors.New("boom"), []string{"Is the backend running?"}),
			want:   []string{"FAILED", "Request failed", "Error: boom", "Troubleshooting:", "Is the backend running?"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No backends", nil).AddDetail("Hint", "check multicast"),
			want:   []string{"WARNING", "No backends", "Hint:", "check multicast"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Render() missing %q in:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"ID", "NAME"}, [][]string{
		{"1", "Artistic"},
		{"2", "Realistic"},
	})

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("RenderTable() produced %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "ID") || !strings.Contains(lines[0], "NAME") {
		t.Errorf("header line = %q", lines[0])
	}
	// Columns line up
	if strings.Index(lines[1], "Artistic") != strings.Index(lines[2], "Realistic") {
		t.Errorf("columns not aligned:\n%s", out)
	}
}

func TestPrinter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		p := NewPrinter(&out).SetWidth(80)
		got := p.Confirm(strings.NewReader(tt.input), "Overwrite", []string{"file exists"}, "Replace it?")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Replace it? [y/N]") {
			t.Errorf("Confirm(%q) did not print the question", tt.input)
		}
	}
}

func TestNewPrinter_NilWriter(t *testing.T) {
	if p := NewPrinter(nil); p.out == nil {
		t.Error("NewPrinter(nil) should default to stdout")
	}
}
