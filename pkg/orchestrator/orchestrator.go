package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"data-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrEmptyQuery = errors.New("query must not be empty")

// Analyst is the code-writing agent. It must treat workDir as its current
// directory, so a chart saved as plot.png ends up in workDir.
type Analyst interface {
	Run(ctx context.Context, instruction, workDir string) (string, error)
}

// Result is always well formed: Text is set even on failure, Image is nil
// unless the agent both announced and actually wrote a chart.
type Result struct {
	RequestID string
	Text      string
	Image     *string
	Failed    bool
	Duration  time.Duration
}

type Options struct {
	// ArtifactRoot holds the working directories.
	ArtifactRoot string
	// PerRequest gives every invocation its own directory under ArtifactRoot.
	// When false all invocations share ArtifactRoot/plot.png.
	PerRequest bool
	// Serialize lets only one invocation run at a time.
	Serialize bool
}

type Orchestrator struct {
	analyst Analyst
	opts    Options
	logger  logger.ILogger
	tracer  trace.Tracer
	mu      sync.Mutex
}

func New(analyst Analyst, opts Options, log logger.ILogger) *Orchestrator {
	if opts.ArtifactRoot == "" {
		opts.ArtifactRoot = "."
	}
	return &Orchestrator{
		analyst: analyst,
		opts:    opts,
		logger:  log,
		tracer:  otel.Tracer("data-chat-be/orchestrator"),
	}
}

// Handle runs one query through the agent. It never returns an error: every
// failure is folded into Result.Text with the "Error processing query: " prefix.
// No timeout is applied here; the agent's own transport bounds the call.
func (o *Orchestrator) Handle(ctx context.Context, query string) Result {
	started := time.Now()
	res := o.handle(ctx, query)
	res.Duration = time.Since(started)
	return res
}

func (o *Orchestrator) handle(ctx context.Context, query string) Result {
	requestID := uuid.NewString()

	if strings.TrimSpace(query) == "" {
		return failure(requestID, ErrEmptyQuery)
	}

	if o.opts.Serialize {
		o.mu.Lock()
		defer o.mu.Unlock()
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.handle", trace.WithAttributes(
		attribute.String("request.id", requestID),
		attribute.Int("query.length", len(query)),
	))
	defer span.End()

	s, err := openSlot(o.opts.ArtifactRoot, requestID, o.opts.PerRequest)
	if err != nil {
		o.logger.Error("Orchestrator", "failed to prepare work dir", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return failure(requestID, err)
	}
	defer func() {
		if err := s.release(); err != nil {
			o.logger.Warn("Orchestrator", "failed to release work dir", map[string]interface{}{
				"request_id": requestID,
				"dir":        s.dir,
				"error":      err.Error(),
			})
		}
	}()

	o.logger.Info("Orchestrator", "invoking agent", map[string]interface{}{
		"request_id": requestID,
		"work_dir":   s.dir,
	})

	raw, err := o.invoke(ctx, BuildInstruction(query), s.dir)
	if err != nil {
		o.logger.Error("Orchestrator", "agent invocation failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return failure(requestID, err)
	}

	res := Result{
		RequestID: requestID,
		Text:      StripMarker(raw),
	}

	// The marker alone is not enough: the agent may claim a chart it never wrote.
	marked := strings.Contains(raw, PlotMarker)
	if marked && s.exists() {
		encoded, err := s.encode()
		if err != nil {
			o.logger.Warn("Orchestrator", "artifact unreadable, returning text only", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
		} else {
			res.Image = &encoded
		}
	} else if marked {
		o.logger.Warn("Orchestrator", "marker present but no artifact written", map[string]interface{}{
			"request_id": requestID,
		})
	}

	span.SetAttributes(attribute.Bool("result.has_image", res.Image != nil))
	return res
}

func (o *Orchestrator) invoke(ctx context.Context, instruction, workDir string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()
	return o.analyst.Run(ctx, instruction, workDir)
}

func failure(requestID string, err error) Result {
	return Result{
		RequestID: requestID,
		Text:      StripMarker(ErrorPrefix + err.Error()),
		Failed:    true,
	}
}
