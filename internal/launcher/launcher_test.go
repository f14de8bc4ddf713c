package launcher

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRun_CapturesOutput(t *testing.T) {
	var echo bytes.Buffer
	r := &Runner{Log: quietLogger(), Echo: &echo}

	out, err := r.Run([]string{"/bin/sh", "-c", "printf 'first\\nsecond\\n'"}, "", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "first\nsecond\n" {
		t.Errorf("output = %q", out)
	}
	if echo.String() != out {
		t.Errorf("echo = %q, want the same stream as the captured output", echo.String())
	}
}

func TestRun_NoEcho(t *testing.T) {
	var echo bytes.Buffer
	r := &Runner{Log: quietLogger(), Echo: &echo}

	out, err := r.Run([]string{"/bin/sh", "-c", "echo quiet"}, "", false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "quiet\n" {
		t.Errorf("output = %q", out)
	}
	if echo.Len() != 0 {
		t.Errorf("echo = %q, want nothing", echo.String())
	}
}

func TestRun_TrailingPartialLine(t *testing.T) {
	r := &Runner{Log: quietLogger()}

	out, err := r.Run([]string{"/bin/sh", "-c", "printf 'no newline'"}, "", false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "no newline" {
		t.Errorf("output = %q", out)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	r := &Runner{Log: quietLogger()}

	out, err := r.Run([]string{"/bin/sh", "-c", "echo boom; exit 3"}, "", false)
	if err == nil {
		t.Fatal("expected an error for a non-zero exit")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %T, want *ExitError", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("exit code = %d, want 3", exitErr.Code)
	}
	if !strings.Contains(exitErr.Output, "boom") {
		t.Errorf("captured output %q lost the tool's last words", exitErr.Output)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("returned output %q lost the tool's last words", out)
	}
}

func TestRun_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{Log: quietLogger()}

	out, err := r.Run([]string{"/bin/sh", "-c", "pwd"}, dir, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != resolved {
		t.Errorf("pwd = %q, want %q", strings.TrimSpace(out), resolved)
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	r := &Runner{Log: quietLogger()}

	_, err := r.Run([]string{"/no/such/tool"}, "", false)
	if err == nil {
		t.Fatal("expected an error for a missing executable")
	}
}

func TestSpectrumTool_Arguments(t *testing.T) {
	// The generator contract is positional: run <calculator> [--v1] in out.
	tests := []struct {
		legacy bool
		want   string
	}{
		{false, "run mssm_ewsb point1.in point1.slha2"},
		{true, "run mssm_ewsb --v1 point1.in point1.slha1"},
	}
	for _, tt := range tests {
		var logBuf bytes.Buffer
		log := logrus.New()
		log.SetOutput(&logBuf)
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

		tool := &SpectrumTool{
			Runner:     &Runner{Log: log},
			Exe:        "/bin/true",
			Calculator: "mssm_ewsb",
		}
		output := "point1.slha2"
		if tt.legacy {
			output = "point1.slha1"
		}
		if err := tool.Generate("point1.in", output, tt.legacy); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !strings.Contains(logBuf.String(), tt.want) {
			t.Errorf("logged command %q missing %q", logBuf.String(), tt.want)
		}
	}
}

func TestMomentTool_VersionTrimmed(t *testing.T) {
	tool := &MomentTool{
		Runner: &Runner{Log: quietLogger()},
		Exe:    "/bin/echo",
	}
	v, err := tool.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if v != "--version" {
		t.Errorf("version = %q, want the trimmed tool output", v)
	}
}
