package python

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScriptEmbedsCodeSafely(t *testing.T) {
	code := `print("it's a \"quoted\" ''' string")`
	script := BuildScript(code, "/data/titanic.csv")

	assert.Contains(t, script, "matplotlib.use('Agg')")
	assert.Contains(t, script, base64.StdEncoding.EncodeToString([]byte(code)))
	assert.Contains(t, script, base64.StdEncoding.EncodeToString([]byte("/data/titanic.csv")))
	assert.NotContains(t, script, code)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "short", truncate("short", 0))

	long := strings.Repeat("x", 20)
	got := truncate(long, 5)
	assert.True(t, strings.HasPrefix(got, "xxxxx\n"))
	assert.Contains(t, got, "truncated")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes; a cut at 2 would land inside it.
	got := truncate("aé bc", 2)
	assert.True(t, strings.HasPrefix(got, "a\n"))

	got = truncate("aé bc", 3)
	assert.True(t, strings.HasPrefix(got, "aé\n"))
}

// fakeInterpreter writes a shell script that stands in for python.
func fakeInterpreter(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestExecuteRunsInWorkDir(t *testing.T) {
	interp := fakeInterpreter(t, `cp "$1" seen.py
pwd > cwd.txt
echo hi > plot.png
echo done
`)
	workDir := t.TempDir()
	e := NewExecutor(interp, "/data/titanic.csv", 10*time.Second, 0)

	out, err := e.Execute(context.Background(), "plt.savefig('plot.png')", workDir)

	require.NoError(t, err)
	assert.Equal(t, "done\n", out)
	assert.FileExists(t, filepath.Join(workDir, "plot.png"))
	assert.NoFileExists(t, filepath.Join(workDir, ScriptName))

	cwd, err := os.ReadFile(filepath.Join(workDir, "cwd.txt"))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(workDir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(string(cwd)))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	seen, err := os.ReadFile(filepath.Join(workDir, "seen.py"))
	require.NoError(t, err)
	assert.Contains(t, string(seen), "matplotlib.use('Agg')")
}

func TestExecuteReportsFailureWithOutput(t *testing.T) {
	interp := fakeInterpreter(t, `echo "KeyError: 'Fares'"
exit 1
`)
	e := NewExecutor(interp, "titanic.csv", 10*time.Second, 0)

	out, err := e.Execute(context.Background(), "print(df['Fares'])", t.TempDir())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Contains(t, out, "KeyError")
}

func TestExecuteTimeoutReturnsPromptly(t *testing.T) {
	// The sleep child keeps stdout open after its parent would have been killed.
	interp := fakeInterpreter(t, `echo hi > plot.png
sleep 30
`)
	workDir := t.TempDir()
	e := NewExecutor(interp, "titanic.csv", 300*time.Millisecond, 0)

	started := time.Now()
	_, err := e.Execute(context.Background(), "while True: pass", workDir)
	elapsed := time.Since(started)

	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, elapsed, 5*time.Second)
	assert.FileExists(t, filepath.Join(workDir, "plot.png"))
	assert.NoFileExists(t, filepath.Join(workDir, ScriptName))
}

func TestExecuteWithoutInterpreter(t *testing.T) {
	e := NewExecutor("", "titanic.csv", 0, 0)
	_, err := e.Execute(context.Background(), "print(1)", t.TempDir())
	assert.ErrorIs(t, err, ErrPythonNotFound)
}

func TestFindInterpreterRejectsMissingConfiguredPath(t *testing.T) {
	_, err := FindInterpreter(filepath.Join(t.TempDir(), "no-such-python"))
	require.ErrorIs(t, err, ErrPythonNotFound)
}
