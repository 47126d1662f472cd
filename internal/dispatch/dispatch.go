package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/alucardeht/home-display-agent/internal/backend"
	"github.com/alucardeht/home-display-agent/internal/logger"
	"github.com/alucardeht/home-display-agent/internal/tools"
)

const outcomeSuccess = "success"

// Result carries either the decoded backend response or a tool error.
type Result struct {
	Value any
	Err   *tools.ToolError
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Text renders the result as the single text payload returned to callers.
func (r Result) Text() string {
	if r.Err != nil {
		return r.Err.Error()
	}

	data, err := json.Marshal(r.Value)
	if err != nil {
		return fmt.Sprint(r.Value)
	}
	return string(data)
}

type Recorder interface {
	ObserveInvocation(tool, outcome string, elapsed time.Duration)
}

type Dispatcher struct {
	registry *tools.Registry
	recorder Recorder
	log      *slog.Logger
}

type Option func(*Dispatcher)

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

func New(registry *tools.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		log:      logger.ForComponent("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Tools() []tools.Tool {
	return d.registry.List()
}

// Call runs the named tool once. It never returns a Go error and never
// panics; every failure becomes Result.Err.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (res Result) {
	start := time.Now()
	log := d.log.With("tool", name, "invocation", uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panic recovered",
				"panic", r,
				"stack", string(debug.Stack()))
			res = Result{Err: tools.NewToolExecutionError(name, fmt.Errorf("tool execution panicked: %v", r))}
		}
		d.observe(name, res, time.Since(start))
	}()

	log.Info("tool invoked")
	log.Debug("tool arguments", "arguments", args)

	tool, ok := d.registry.Get(name)
	if !ok {
		res = Result{Err: tools.NewToolNotFoundError(name)}
		log.Warn("unknown tool")
		return res
	}

	value, err := tool.Execute(ctx, args)
	if err != nil {
		res = Result{Err: classify(name, err)}
		logFailure(log, res.Err, err)
		return res
	}

	log.Info("tool completed", "elapsed", time.Since(start))
	return Result{Value: value}
}

func (d *Dispatcher) observe(name string, res Result, elapsed time.Duration) {
	if d.recorder == nil {
		return
	}
	outcome := outcomeSuccess
	if res.Err != nil {
		outcome = string(res.Err.Kind)
	}
	d.recorder.ObserveInvocation(name, outcome, elapsed)
}

func classify(name string, err error) *tools.ToolError {
	var statusErr *backend.StatusError
	var netErr *backend.NetworkError
	var missing *tools.MissingArgumentError
	var badArg *tools.ArgumentTypeError
	var toolErr *tools.ToolError

	switch {
	case errors.As(err, &toolErr):
		return toolErr
	case errors.As(err, &statusErr):
		return tools.NewUpstreamError(name, statusErr.StatusCode, statusErr.Body)
	case errors.As(err, &netErr):
		return tools.NewNetworkError(name, netErr)
	case errors.As(err, &missing):
		return tools.NewInvalidArgumentsError(name, missing)
	case errors.As(err, &badArg):
		return tools.NewInvalidArgumentsError(name, badArg)
	default:
		return tools.NewToolExecutionError(name, err)
	}
}

func logFailure(log *slog.Logger, toolErr *tools.ToolError, err error) {
	switch toolErr.Kind {
	case tools.KindUpstream:
		var url string
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) {
			url = statusErr.URL
		}
		log.Error("backend returned error status",
			"status", toolErr.Status,
			"url", url,
			"response", toolErr.Message)
	case tools.KindNetwork:
		log.Error("backend request failed", "error", err)
	case tools.KindInvalidArguments:
		log.Warn("invalid tool arguments", "error", err)
	default:
		log.Error("tool execution failed", "error", err)
	}
}
