package main

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = "1.2.3-test", "abc123"
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	for _, want := range []string{
		"xget edge 1.2.3-test",
		"Git Commit: abc123",
		"Go Version: " + runtime.Version(),
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand_RejectsArgs(t *testing.T) {
	if _, err := executeCommand(t, "version", "extra"); err == nil {
		t.Error("expected error for unexpected argument")
	}
}
