package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLayout(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no directories", args: nil, want: 1},
		{name: "unknown flag", args: []string{"-bogus"}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := runWithArgs(tt.args, &stdout, &stderr); got != tt.want {
				t.Fatalf("runWithArgs() = %d, want %d (stderr %q)", got, tt.want, stderr.String())
			}
			if stdout.Len() != 0 {
				t.Fatalf("stdout = %q, want empty", stdout.String())
			}
		})
	}
}

func TestRunClean(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "Main.SC2Layout", `<Desc><Frame type="Frame" name="Panel"/></Desc>`)

	var stdout, stderr bytes.Buffer
	if got := runWithArgs([]string{dir}, &stdout, &stderr); got != 0 {
		t.Fatalf("runWithArgs() = %d, stderr %q", got, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Files processed: 1\nErrors: 0\n") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestRunReportsErrors(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "Main.SC2Layout", `<Desc><Frame type="Frame" name="Panel">
<Anchor side="Top" relative="$parent/Missing"/>
</Frame></Desc>`)

	var stdout, stderr bytes.Buffer
	if got := runWithArgs([]string{dir}, &stdout, &stderr); got != 1 {
		t.Fatalf("runWithArgs() = %d, want 1", got)
	}
	out := stdout.String()
	if !strings.Contains(out, `[ERROR] cannot resolve "Missing"`) || !strings.Contains(out, "in Main.SC2Layout:2:") {
		t.Fatalf("stdout = %q", out)
	}
}

func TestRunCustomRootFile(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "Shell.SC2Layout", `<Desc><Frame type="Frame" name="World"/></Desc>`)
	writeLayout(t, dir, "Main.SC2Layout", `<Desc><Frame type="Frame" name="Panel">
<Anchor side="Top" relative="$root/World"/>
</Frame></Desc>`)

	var stdout, stderr bytes.Buffer
	if got := runWithArgs([]string{"-root", "Shell", dir}, &stdout, &stderr); got != 0 {
		t.Fatalf("runWithArgs(-root Shell) = %d, stdout %q", got, stdout.String())
	}
	stdout.Reset()
	if got := runWithArgs([]string{dir}, &stdout, &stderr); got != 1 {
		t.Fatalf("runWithArgs() = %d, want 1 with the default root file", got)
	}
}

func TestRunVerbose(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "Main.SC2Layout", `<Desc/>`)

	var stdout, stderr bytes.Buffer
	if got := runWithArgs([]string{"-v", dir}, &stdout, &stderr); got != 0 {
		t.Fatalf("runWithArgs(-v) = %d, stderr %q", got, stderr.String())
	}
	if !strings.Contains(stderr.String(), "msg=\"loaded layouts\"") || !strings.Contains(stderr.String(), "files=1") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "Main.SC2Layout", `<Desc/>`)
	out := t.TempDir()
	cpu, mem := filepath.Join(out, "cpu.out"), filepath.Join(out, "mem.out")

	var stdout, stderr bytes.Buffer
	if got := runWithArgs([]string{"-cpuprofile", cpu, "-memprofile", mem, dir}, &stdout, &stderr); got != 0 {
		t.Fatalf("runWithArgs() = %d, stderr %q", got, stderr.String())
	}
	for _, p := range []string{cpu, mem} {
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Fatalf("profile %s: %v", p, err)
		}
	}

	stderr.Reset()
	bad := filepath.Join(out, "missing", "cpu.out")
	if got := runWithArgs([]string{"-cpuprofile", bad, dir}, &stdout, &stderr); got != 1 {
		t.Fatalf("runWithArgs(bad cpuprofile) = %d, want 1", got)
	}
	if !strings.Contains(stderr.String(), "cpu profile") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunMissingDirectory(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing")
	if got := runWithArgs([]string{missing}, &stdout, &stderr); got != 1 {
		t.Fatalf("runWithArgs() = %d, want 1", got)
	}
	if !strings.Contains(stderr.String(), "error loading") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunInvalidOptions(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if got := runWithArgs([]string{"-ext", "layout", t.TempDir()}, &stdout, &stderr); got != 1 {
		t.Fatalf("runWithArgs() = %d, want 1", got)
	}
}
