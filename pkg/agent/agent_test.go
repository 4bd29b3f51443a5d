package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"data-chat-be/internal/pkg/logger"
	"data-chat-be/pkg/dataset"
	"data-chat-be/pkg/llm"
	"data-chat-be/pkg/python"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	replies  []string
	err      error
	received [][]llm.Message
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.received = append(s.received, append([]llm.Message(nil), history...))
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

type fakeRunner struct {
	output string
	err    error
	calls  []string
	dirs   []string
}

func (f *fakeRunner) Execute(ctx context.Context, code, workDir string) (string, error) {
	f.calls = append(f.calls, code)
	f.dirs = append(f.dirs, workDir)
	return f.output, f.err
}

// chartRunner writes plot.png into the work dir, as savefig would.
type chartRunner struct {
	calls int
}

func (c *chartRunner) Execute(ctx context.Context, code, workDir string) (string, error) {
	c.calls++
	return "", os.WriteFile(filepath.Join(workDir, "plot.png"), []byte("png"), 0644)
}

type staticDataset struct {
	err error
}

func (s staticDataset) Describe(ctx context.Context) (*dataset.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dataset.Summary{
		Columns: []string{"Age", "Fare"},
		Rows:    2,
		Head:    [][]string{{"22", "7.25"}, {"38", "71.28"}},
	}, nil
}

func TestRunExecutesCodeThenAnswers(t *testing.T) {
	model := &scriptedLLM{replies: []string{
		"```python\nprint(df['Fare'].mean())\n```",
		"Final Answer: The average fare was 39.27.",
	}}
	runner := &fakeRunner{output: "39.265\n"}
	a := NewDataFrameAgent(model, runner, staticDataset{}, 4, logger.NewNopLogger())

	answer, err := a.Run(context.Background(), "What was the average ticket fare?", "/tmp/req-1")

	require.NoError(t, err)
	assert.Equal(t, "The average fare was 39.27.", answer)
	assert.Equal(t, []string{"print(df['Fare'].mean())"}, runner.calls)
	assert.Equal(t, []string{"/tmp/req-1"}, runner.dirs)

	require.Len(t, model.received, 2)
	first := model.received[0]
	assert.Equal(t, llm.RoleSystem, first[0].Role)
	assert.Contains(t, first[0].Content, "Age, Fare")
	assert.Equal(t, "What was the average ticket fare?", first[1].Content)

	second := model.received[1]
	require.Len(t, second, 4)
	assert.Equal(t, llm.RoleAssistant, second[2].Role)
	assert.Equal(t, "Observation:\n39.265", second[3].Content)
}

func TestRunFeedsExecutionErrorsBack(t *testing.T) {
	model := &scriptedLLM{replies: []string{
		"```python\nprint(df['Fares'])\n```",
		"Final Answer: 891",
	}}
	runner := &fakeRunner{output: "KeyError: 'Fares'", err: errors.New("exit status 1")}
	a := NewDataFrameAgent(model, runner, staticDataset{}, 4, logger.NewNopLogger())

	answer, err := a.Run(context.Background(), "q", t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "891", answer)
	obs := model.received[1][3].Content
	assert.True(t, strings.HasPrefix(obs, "Observation (error: exit status 1)"))
	assert.Contains(t, obs, "KeyError")
}

func TestRunStopsAfterMaxIterations(t *testing.T) {
	model := &scriptedLLM{replies: []string{
		"```python\nprint(1)\n```",
		"```python\nprint(2)\n```",
	}}
	a := NewDataFrameAgent(model, &fakeRunner{output: "1"}, staticDataset{}, 2, logger.NewNopLogger())

	_, err := a.Run(context.Background(), "q", t.TempDir())

	require.ErrorIs(t, err, ErrNoFinalAnswer)
	assert.Contains(t, err.Error(), "after 2 iterations")
}

func TestRunSurfacesFatalErrors(t *testing.T) {
	t.Run("llm failure", func(t *testing.T) {
		model := &scriptedLLM{err: errors.New("quota exceeded")}
		a := NewDataFrameAgent(model, &fakeRunner{}, staticDataset{}, 2, logger.NewNopLogger())

		_, err := a.Run(context.Background(), "q", t.TempDir())
		assert.EqualError(t, err, "llm call: quota exceeded")
	})

	t.Run("no interpreter", func(t *testing.T) {
		model := &scriptedLLM{replies: []string{"```python\nprint(1)\n```"}}
		runner := &fakeRunner{err: python.ErrPythonNotFound}
		a := NewDataFrameAgent(model, runner, staticDataset{}, 2, logger.NewNopLogger())

		_, err := a.Run(context.Background(), "q", t.TempDir())
		assert.ErrorIs(t, err, python.ErrPythonNotFound)
	})

	t.Run("dataset unavailable", func(t *testing.T) {
		a := NewDataFrameAgent(&scriptedLLM{}, &fakeRunner{}, staticDataset{err: errors.New("offline")}, 2, logger.NewNopLogger())

		_, err := a.Run(context.Background(), "q", t.TempDir())
		assert.EqualError(t, err, "load dataset: offline")
	})
}

func TestNewDataFrameAgentDefaultsIterations(t *testing.T) {
	a := NewDataFrameAgent(&scriptedLLM{}, &fakeRunner{}, staticDataset{}, 0, logger.NewNopLogger())
	assert.Equal(t, DefaultMaxIterations, a.maxIterations)
}

func TestRunExecutesCodeSentWithFinalAnswer(t *testing.T) {
	model := &scriptedLLM{replies: []string{
		"```python\nsns.histplot(df['Age'])\nplt.savefig('plot.png')\n```\nFinal Answer: Here is the histogram of ages. PLOT_SAVED",
	}}
	runner := &chartRunner{}
	workDir := t.TempDir()
	a := NewDataFrameAgent(model, runner, staticDataset{}, 4, logger.NewNopLogger())

	answer, err := a.Run(context.Background(), "Show me a histogram of ages", workDir)

	require.NoError(t, err)
	assert.Equal(t, "Here is the histogram of ages. PLOT_SAVED", answer)
	assert.Equal(t, 1, runner.calls)
	assert.FileExists(t, filepath.Join(workDir, "plot.png"))
	assert.Len(t, model.received, 1)
}

func TestRunRetriesWhenCodeWithFinalAnswerFails(t *testing.T) {
	model := &scriptedLLM{replies: []string{
		"```python\nplt.savefig('plot.png')\n```\nFinal Answer: Chart saved. PLOT_SAVED",
		"Final Answer: I could not draw the chart.",
	}}
	runner := &fakeRunner{output: "NameError: name 'plt' is not defined", err: errors.New("exit status 1")}
	a := NewDataFrameAgent(model, runner, staticDataset{}, 4, logger.NewNopLogger())

	answer, err := a.Run(context.Background(), "q", t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "I could not draw the chart.", answer)
	assert.Len(t, runner.calls, 1)
	require.Len(t, model.received, 2)
	assert.Contains(t, model.received[1][3].Content, "NameError")
}
