package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	if GetExtension() != ".prompt.md" {
		t.Errorf("unexpected extension %q", GetExtension())
	}
	if GetMaxDepth() != 32 {
		t.Errorf("unexpected max depth %d", GetMaxDepth())
	}
	if GetWatchDebounce() != 250*time.Millisecond {
		t.Errorf("unexpected debounce %v", GetWatchDebounce())
	}
	if GetFormat() != "tree" {
		t.Errorf("unexpected format %q", GetFormat())
	}
	if GetOutput() != "print" {
		t.Errorf("unexpected output %q", GetOutput())
	}
}

func TestGetEditor(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		visual   string
		editor   string
		expected string
	}{
		{"config wins", "nano", "code", "vim", "nano"},
		{"visual before editor", "", "code", "vim", "code"},
		{"editor", "", "", "vim", "vim"},
		{"fallback", "", "", "", "vi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			SetDefaults()
			viper.Set("editor", tt.config)
			t.Setenv("VISUAL", tt.visual)
			t.Setenv("EDITOR", tt.editor)

			if got := GetEditor(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("PROMPTREF_MAX_DEPTH", "7")
	t.Setenv("PROMPTREF_EXTENSION", ".md")

	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if GetMaxDepth() != 7 || C.MaxDepth != 7 {
		t.Errorf("expected max depth 7, got %d / %d", GetMaxDepth(), C.MaxDepth)
	}
	if C.Extension != ".md" {
		t.Errorf("expected extension .md, got %q", C.Extension)
	}
}

func TestSetters(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetFormat("yaml")
	SetPath("/prompts")
	if GetFormat() != "yaml" || C.Format != "yaml" {
		t.Errorf("format not applied")
	}
	if GetPath() != "/prompts" || C.Path != "/prompts" {
		t.Errorf("path not applied")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandTilde("~/prompts"); got != filepath.Join(home, "prompts") {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := expandTilde("/abs"); got != "/abs" {
		t.Errorf("absolute paths must not change, got %q", got)
	}
	if got := expandTilde(""); got != "" {
		t.Errorf("empty path must stay empty, got %q", got)
	}
}
