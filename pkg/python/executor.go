package python

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
	"unicode/utf8"
)

// waitDelay bounds how long Execute waits for output pipes after the
// interpreter has been killed.
const waitDelay = 2 * time.Second

// ErrTimeout is returned when a single execution exceeds its deadline.
var ErrTimeout = errors.New("python execution timed out")

// CodeRunner runs a code snippet against the dataset inside workDir.
type CodeRunner interface {
	Execute(ctx context.Context, code, workDir string) (string, error)
}

type Executor struct {
	PythonPath     string
	DatasetPath    string
	Timeout        time.Duration
	MaxOutputBytes int
}

var _ CodeRunner = &Executor{}

func NewExecutor(pythonPath, datasetPath string, timeout time.Duration, maxOutputBytes int) *Executor {
	return &Executor{
		PythonPath:     pythonPath,
		DatasetPath:    datasetPath,
		Timeout:        timeout,
		MaxOutputBytes: maxOutputBytes,
	}
}

// Execute writes the wrapped script into workDir and runs it with workDir as cwd,
// so relative writes such as plot.png land there. The returned output is
// combined stdout/stderr, truncated to MaxOutputBytes. A non-nil error still
// comes with whatever output the script produced.
func (e *Executor) Execute(ctx context.Context, code, workDir string) (string, error) {
	if e.PythonPath == "" {
		return "", ErrPythonNotFound
	}

	scriptPath := filepath.Join(workDir, ScriptName)
	if err := os.WriteFile(scriptPath, []byte(BuildScript(code, e.DatasetPath)), 0644); err != nil {
		return "", fmt.Errorf("write script: %w", err)
	}
	defer os.Remove(scriptPath)

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.PythonPath, ScriptName)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "MPLBACKEND=Agg", "PYTHONIOENCODING=utf-8")
	// Kill the whole process group on timeout so children holding stdout die too.
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	output := truncate(out.String(), e.MaxOutputBytes)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output, fmt.Errorf("%w after %s", ErrTimeout, e.Timeout)
	}
	if runErr != nil {
		return output, fmt.Errorf("python execution error: %w", runErr)
	}
	return output, nil
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n... (output truncated)"
}
