package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version string resolution.
func TestGetVersion(t *testing.T) {
	t.Run("returns non-empty version", func(t *testing.T) {
		v := getVersion()
		if v == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("prefers ldflags value", func(t *testing.T) {
		orig := version
		defer func() { version = orig }()

		version = "v1.2.3"
		if got := getVersion(); got != "v1.2.3" {
			t.Errorf("expected 'v1.2.3', got %q", got)
		}
	})
}

// TestGetCommit tests commit hash resolution.
func TestGetCommit(t *testing.T) {
	t.Run("returns non-empty commit", func(t *testing.T) {
		c := getCommit()
		if c == "" {
			t.Error("expected non-empty commit")
		}
	})

	t.Run("prefers ldflags value", func(t *testing.T) {
		orig := commit
		defer func() { commit = orig }()

		commit = "abc1234"
		if got := getCommit(); got != "abc1234" {
			t.Errorf("expected 'abc1234', got %q", got)
		}
	})
}

// TestGetDate tests build date resolution.
func TestGetDate(t *testing.T) {
	t.Run("prefers ldflags value", func(t *testing.T) {
		orig := date
		defer func() { date = orig }()

		date = "2026-01-02"
		if got := getDate(); got != "2026-01-02" {
			t.Errorf("expected '2026-01-02', got %q", got)
		}
	})
}

// TestVersionCmd tests the version command output.
func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "a11yctl version") {
		t.Errorf("expected output to contain 'a11yctl version', got %q", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Errorf("expected output to contain 'commit:', got %q", output)
	}
}
