package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
	"go.uber.org/zap"
)

// StageName identifies a node in the pipeline graph.
type StageName string

const (
	StageClone    StageName = "clone"
	StageAnalyze  StageName = "analyze"
	StageLocate   StageName = "locate"
	StageDelegate StageName = "delegate"
	StageCritique StageName = "critique"
	StagePublish  StageName = "publish"
	StageReport   StageName = "report"
)

// StageOrder returns the stage graph in execution order. The single
// conditional edge sits after StageCritique (see Gate).
func StageOrder() []StageName {
	return []StageName{
		StageClone,
		StageAnalyze,
		StageLocate,
		StageDelegate,
		StageCritique,
		StagePublish,
		StageReport,
	}
}

// Stage executes one node of the pipeline. Implementations read the fields
// prior stages wrote and write their own; a returned error marks the stage
// degraded but never stops the run.
type Stage interface {
	// Name returns the graph node this stage implements.
	Name() StageName

	// Execute runs the stage work against the shared state.
	Execute(ctx context.Context, state *PipelineState) error
}

// Engine holds the stage graph and drives a run through it.
type Engine struct {
	stages map[StageName]Stage
	gate   *Gate
	logger *logging.Logger
}

// NewEngine creates an engine with the given gate and logger.
func NewEngine(gate *Gate, logger *logging.Logger) *Engine {
	return &Engine{
		stages: make(map[StageName]Stage),
		gate:   gate,
		logger: logger,
	}
}

// Register adds a stage implementation to the graph.
func (e *Engine) Register(stage Stage) {
	e.stages[stage.Name()] = stage
}

// Run executes the pipeline over state and returns it. The returned error
// is non-nil only when a graph node has no registered stage; stage-internal
// failures are absorbed into state.Errors and state.CurrentStep.
func (e *Engine) Run(ctx context.Context, state *PipelineState) (*PipelineState, error) {
	order := StageOrder()

	for _, name := range order {
		if _, ok := e.stages[name]; !ok {
			return state, fmt.Errorf("no stage registered for %q", name)
		}
	}

	i := 0
	for i < len(order) {
		name := order[i]
		stageCtx := logging.WithStage(ctx, string(name))

		e.executeStage(stageCtx, e.stages[name], state)

		if name == StageCritique {
			decision := e.gate.Decide(state)
			recordGateDecision(ctx, decision)

			if decision == DecisionRetry {
				e.logger.Info(stageCtx, "critique gate rejected round, re-delegating",
					zap.Int("attempt", state.DelegateAttempts),
					zap.Int("approved", state.ApprovedCount),
					zap.Int("rejected", state.RejectedCount),
				)
				i = indexOf(order, StageDelegate)
				continue
			}

			if !state.IsSatisfactory {
				// Best-effort proceed at the attempt cap.
				note := fmt.Sprintf("critique gate: proceeding after %d delegate attempts without full approval", state.DelegateAttempts)
				state.AppendError(note)
				e.logger.Warn(stageCtx, "critique gate proceeding best-effort",
					zap.Int("attempts", state.DelegateAttempts),
					zap.Float64("approval_rate", state.ApprovalRate),
				)
			}
		}

		i++
	}

	return state, nil
}

// executeStage runs one stage with full error isolation: returned errors
// and panics both land in state.Errors, and CurrentStep always advances.
func (e *Engine) executeStage(ctx context.Context, stage Stage, state *PipelineState) {
	name := stage.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			state.AppendError(fmt.Sprintf("%s panic: %v", name, r))
			e.logger.Error(ctx, "stage panicked", zap.Any("panic", r))
		}
		state.CurrentStep = string(name)
		recordStage(ctx, name, time.Since(start))
	}()

	e.logger.Info(ctx, "stage started")

	if err := stage.Execute(ctx, state); err != nil {
		state.AppendError(fmt.Sprintf("%s error: %v", name, err))
		e.logger.Warn(ctx, "stage degraded", zap.Error(err))
		return
	}

	e.logger.Info(ctx, "stage completed", zap.Duration("took", time.Since(start)))
}

func indexOf(order []StageName, name StageName) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return 0
}
