package server

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/modelexec/batch"
	"github.com/jonwraymond/modelexec/run"
)

// ModelLister lists available model identifiers. *run.Runner implements it.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Server wires the execution engine to MCP tool handlers.
type Server struct {
	runner *run.Runner
	sched  *batch.Scheduler
	lister ModelLister
}

// New creates a Server on top of the given runner.
func New(runner *run.Runner) *Server {
	return &Server{
		runner: runner,
		sched:  batch.NewScheduler(runner),
		lister: runner,
	}
}

// Register adds the server's tools to an MCP server.
func (s *Server) Register(m *mcp.Server) {
	mcp.AddTool(m, &mcp.Tool{
		Name:        "run_model",
		Description: "Run a model with a prompt and return its output, exit code, and any failure.",
	}, s.handleRunModel)

	mcp.AddTool(m, &mcp.Tool{
		Name:        "run_model_batch",
		Description: "Run several model invocations under a concurrency limit; results keep submission order.",
	}, s.handleRunBatch)

	mcp.AddTool(m, &mcp.Tool{
		Name:        "list_models",
		Description: "List the model identifiers available to the local runtime.",
	}, s.handleListModels)
}

// runParams is the wire form of one invocation request.
type runParams struct {
	Model       string   `json:"model" jsonschema:"model identifier to run"`
	Prompt      string   `json:"prompt" jsonschema:"prompt text fed to the model"`
	System      string   `json:"system,omitempty" jsonschema:"optional system text prepended to the prompt"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature, 0 to 2"`
	NumPredict  *int     `json:"numPredict,omitempty" jsonschema:"maximum tokens to generate, 1 to 8192"`
	TimeoutMs   int64    `json:"timeoutMs,omitempty" jsonschema:"per-job timeout in milliseconds, default 120000"`
}

// runOutput is the wire form of one terminal result.
type runOutput struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
	TimedOut bool   `json:"timedOut,omitempty"`
	Error    string `json:"error,omitempty"`
}

type batchParams struct {
	Jobs           []runParams `json:"jobs" jsonschema:"invocations to run"`
	MaxConcurrency int         `json:"maxConcurrency,omitempty" jsonschema:"parallelism limit, clamped to 1..8, default 3"`
}

type batchOutput struct {
	Results []runOutput `json:"results"`
}

type listParams struct{}

type listOutput struct {
	Models []string `json:"models"`
}

func (p runParams) job() run.Job {
	return run.Job{
		Model:  p.Model,
		Prompt: p.Prompt,
		Options: run.Options{
			System:      p.System,
			Temperature: p.Temperature,
			NumPredict:  p.NumPredict,
			Timeout:     time.Duration(p.TimeoutMs) * time.Millisecond,
		},
	}
}

func toOutput(res run.Result) runOutput {
	out := runOutput{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
	}
	if res.Error != nil {
		out.Error = res.Error.Error()
	}
	return out
}

func (s *Server) handleRunModel(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, runOutput, error) {
	res, err := s.runner.Run(ctx, params.job())
	if err != nil {
		return nil, runOutput{}, err
	}
	return nil, toOutput(res), nil
}

func (s *Server) handleRunBatch(ctx context.Context, req *mcp.CallToolRequest, params batchParams) (*mcp.CallToolResult, batchOutput, error) {
	jobs := make([]run.Job, len(params.Jobs))
	for i, p := range params.Jobs {
		jobs[i] = p.job()
	}

	results, err := s.sched.RunAll(ctx, jobs, params.MaxConcurrency)
	if err != nil {
		return nil, batchOutput{}, err
	}

	out := batchOutput{Results: make([]runOutput, len(results))}
	for i, res := range results {
		out.Results[i] = toOutput(res)
	}
	return nil, out, nil
}

func (s *Server) handleListModels(ctx context.Context, req *mcp.CallToolRequest, _ listParams) (*mcp.CallToolResult, listOutput, error) {
	models, err := s.lister.ListModels(ctx)
	if err != nil {
		return nil, listOutput{}, err
	}
	return nil, listOutput{Models: models}, nil
}
