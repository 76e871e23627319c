package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare tilde",
			input:    "~",
			expected: home,
		},
		{
			name:     "tilde slash",
			input:    "~/Dropbox/ai.csv",
			expected: filepath.Join(home, "Dropbox", "ai.csv"),
		},
		{
			name:     "absolute path untouched",
			input:    "/tmp/file.md",
			expected: "/tmp/file.md",
		},
		{
			name:     "relative path untouched",
			input:    "docs/proposed/plan.md",
			expected: "docs/proposed/plan.md",
		},
		{
			name:     "other user form untouched",
			input:    "~bob/file",
			expected: "~bob/file",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandHome(tt.input)
			if got != tt.expected {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHasGlobMeta(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"~/Desktop/doc-drafts/*/blog.md", true},
		{"/tmp/file?.md", true},
		{"/tmp/[ab].md", true},
		{"/tmp/{a,b}.md", true},
		{"/tmp/plain.md", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := HasGlobMeta(tt.input); got != tt.expected {
				t.Errorf("HasGlobMeta(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSleep(t *testing.T) {
	t.Run("returns after duration", func(t *testing.T) {
		if err := Sleep(context.Background(), time.Millisecond); err != nil {
			t.Errorf("Sleep() error = %v", err)
		}
	})

	t.Run("returns early when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		if err := Sleep(ctx, time.Hour); err != context.Canceled {
			t.Errorf("Sleep() error = %v, want context.Canceled", err)
		}
		if time.Since(start) > time.Second {
			t.Error("Sleep() did not return promptly after cancellation")
		}
	})

	t.Run("zero duration", func(t *testing.T) {
		if err := Sleep(context.Background(), 0); err != nil {
			t.Errorf("Sleep() error = %v", err)
		}
	})
}
