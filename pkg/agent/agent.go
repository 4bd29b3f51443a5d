package agent

import (
	"context"
	"errors"
	"fmt"

	"data-chat-be/internal/pkg/logger"
	"data-chat-be/pkg/dataset"
	"data-chat-be/pkg/llm"
	"data-chat-be/pkg/python"
)

const DefaultMaxIterations = 8

var ErrNoFinalAnswer = errors.New("agent stopped without a final answer")

// DatasetDescriber is the part of the dataset provider the agent reads.
type DatasetDescriber interface {
	Describe(ctx context.Context) (*dataset.Summary, error)
}

// DataFrameAgent answers instructions by letting the model write Python against df
// and feeding execution output back until the model produces a final answer.
type DataFrameAgent struct {
	llmProvider   llm.LLMProvider
	runner        python.CodeRunner
	dataset       DatasetDescriber
	maxIterations int
	logger        logger.ILogger
}

func NewDataFrameAgent(
	llmProvider llm.LLMProvider,
	runner python.CodeRunner,
	ds DatasetDescriber,
	maxIterations int,
	log logger.ILogger,
) *DataFrameAgent {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &DataFrameAgent{
		llmProvider:   llmProvider,
		runner:        runner,
		dataset:       ds,
		maxIterations: maxIterations,
		logger:        log,
	}
}

// Run executes every code step with workDir as the current directory.
func (a *DataFrameAgent) Run(ctx context.Context, instruction, workDir string) (string, error) {
	summary, err := a.dataset.Describe(ctx)
	if err != nil {
		return "", fmt.Errorf("load dataset: %w", err)
	}

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: BuildSystemPrompt(summary)},
		{Role: llm.RoleUser, Content: instruction},
	}

	for i := 1; i <= a.maxIterations; i++ {
		reply, err := a.llmProvider.Chat(ctx, history)
		if err != nil {
			return "", fmt.Errorf("llm call: %w", err)
		}

		step := ParseStep(reply)
		if step.Code == "" {
			a.logger.Debug("Agent", "final answer", map[string]interface{}{"iteration": i})
			return step.Answer, nil
		}

		output, execErr := a.runner.Execute(ctx, step.Code, workDir)
		if errors.Is(execErr, python.ErrPythonNotFound) {
			return "", execErr
		}
		if execErr != nil {
			a.logger.Warn("Agent", "code step failed", map[string]interface{}{
				"iteration": i,
				"error":     execErr.Error(),
			})
		}

		// An answer sent together with code stands only if that code ran cleanly;
		// otherwise the model sees the failure and tries again.
		if step.Final && execErr == nil {
			a.logger.Debug("Agent", "final answer after code", map[string]interface{}{"iteration": i})
			return step.Answer, nil
		}

		history = append(history,
			llm.Message{Role: llm.RoleAssistant, Content: reply},
			llm.Message{Role: llm.RoleUser, Content: FormatObservation(output, execErr)},
		)
	}

	return "", fmt.Errorf("%w after %d iterations", ErrNoFinalAnswer, a.maxIterations)
}
