// Package launcher starts the external calculator processes. Each tool is
// an opaque argv contract: the runner blocks until the child exits, reading
// its standard output to completion line by line, echoing each line to the
// console when requested while always accumulating the full text. There are
// no timeouts and no cancellation; a hung calculator blocks the pipeline.
package launcher

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// ExitError reports a tool that terminated with a non-zero status. The
// captured stdout is carried along so the caller can surface it.
type ExitError struct {
	Command []string
	Code    int
	Output  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit code %d", e.Command[0], e.Code)
}

// Runner executes external tools, logging each command line before it
// starts and streaming tool output to Echo.
type Runner struct {
	Log  *logrus.Logger
	Echo io.Writer
}

// NewRunner returns a Runner echoing tool output to stdout.
func NewRunner(log *logrus.Logger) *Runner {
	return &Runner{Log: log, Echo: os.Stdout}
}

// Run starts command (argv form) with the working directory dir (empty for
// the current directory) and returns its full standard output. The child's
// stderr passes through to the console. A non-zero exit status is returned
// as an *ExitError; the failure is also logged together with the captured
// output so the run's last words are never lost.
func (r *Runner) Run(command []string, dir string, echo bool) (string, error) {
	if r.Log != nil {
		r.Log.Info(strings.Join(command, " "))
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("cannot start %s: %w", command[0], err)
	}

	var buf strings.Builder
	reader := bufio.NewReader(stdout)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			buf.WriteString(line)
			if echo && r.Echo != nil {
				fmt.Fprint(r.Echo, line)
			}
		}
		if readErr != nil {
			break
		}
	}

	output := buf.String()
	if err := cmd.Wait(); err != nil {
		code := 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		if r.Log != nil {
			r.Log.Errorf("run failed with exit code %d", code)
			if !echo {
				r.Log.Error(output)
			}
		}
		return output, &ExitError{Command: command, Code: code, Output: output}
	}
	return output, nil
}
