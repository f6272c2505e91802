package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
)

// fakeStage records executions and delegates behavior to fn.
type fakeStage struct {
	name  StageName
	calls int
	fn    func(ctx context.Context, state *PipelineState) error
}

func (s *fakeStage) Name() StageName { return s.name }

func (s *fakeStage) Execute(ctx context.Context, state *PipelineState) error {
	s.calls++
	if s.fn != nil {
		return s.fn(ctx, state)
	}
	return nil
}

// newTestEngine registers a no-op stage for every graph node and returns
// the engine plus the stages by name for per-test overrides.
func newTestEngine(t *testing.T, maxAttempts int) (*Engine, map[StageName]*fakeStage, *logging.TestLogger) {
	t.Helper()

	logger := logging.NewTestLogger()
	engine := NewEngine(NewGate(maxAttempts), logger.Logger)

	stages := make(map[StageName]*fakeStage)
	for _, name := range StageOrder() {
		stage := &fakeStage{name: name}
		stages[name] = stage
		engine.Register(stage)
	}

	// Without an override the critique round passes on merit.
	stages[StageCritique].fn = func(_ context.Context, state *PipelineState) error {
		state.IsSatisfactory = true
		return nil
	}
	stages[StageDelegate].fn = func(_ context.Context, state *PipelineState) error {
		state.DelegateAttempts++
		return nil
	}

	return engine, stages, logger
}

func TestEngine_RunHappyPath(t *testing.T) {
	engine, stages, _ := newTestEngine(t, 3)
	state := NewPipelineState("url", "repo")

	got, err := engine.Run(context.Background(), state)
	require.NoError(t, err)

	for _, name := range StageOrder() {
		assert.Equal(t, 1, stages[name].calls, "stage %s", name)
	}
	assert.Equal(t, string(StageReport), got.CurrentStep)
	assert.Empty(t, got.Errors)
}

func TestEngine_RunUnregisteredStage(t *testing.T) {
	logger := logging.NewTestLogger()
	engine := NewEngine(NewGate(3), logger.Logger)
	engine.Register(&fakeStage{name: StageClone})

	_, err := engine.Run(context.Background(), NewPipelineState("url", "repo"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stage registered")
}

func TestEngine_StageErrorIsAbsorbed(t *testing.T) {
	engine, stages, _ := newTestEngine(t, 3)
	stages[StageAnalyze].fn = func(_ context.Context, _ *PipelineState) error {
		return errors.New("oracle unreachable")
	}

	state, err := engine.Run(context.Background(), NewPipelineState("url", "repo"))
	require.NoError(t, err, "stage failures never fail the run")

	require.Len(t, state.Errors, 1)
	assert.Equal(t, "analyze error: oracle unreachable", state.Errors[0])
	assert.Equal(t, 1, stages[StageReport].calls, "run still reaches report")
	assert.Equal(t, string(StageReport), state.CurrentStep)
}

func TestEngine_StagePanicIsAbsorbed(t *testing.T) {
	engine, stages, logger := newTestEngine(t, 3)
	stages[StageLocate].fn = func(_ context.Context, _ *PipelineState) error {
		panic("nil map write")
	}

	state, err := engine.Run(context.Background(), NewPipelineState("url", "repo"))
	require.NoError(t, err)

	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "locate panic: nil map write")
	assert.Equal(t, 1, stages[StageReport].calls)
	logger.AssertLogged(t, zapcore.ErrorLevel, "stage panicked")
}

func TestEngine_CritiqueRetryLoop(t *testing.T) {
	engine, stages, _ := newTestEngine(t, 3)

	// Round 1 and 2 fail review, round 3 passes.
	stages[StageCritique].fn = func(_ context.Context, state *PipelineState) error {
		state.IsSatisfactory = state.DelegateAttempts >= 3
		return nil
	}

	state, err := engine.Run(context.Background(), NewPipelineState("url", "repo"))
	require.NoError(t, err)

	assert.Equal(t, 3, stages[StageDelegate].calls)
	assert.Equal(t, 3, stages[StageCritique].calls)
	assert.Equal(t, 1, stages[StagePublish].calls, "publish runs only after the gate proceeds")
	assert.Empty(t, state.Errors)
	assert.True(t, state.IsSatisfactory)
}

func TestEngine_BestEffortProceedAtCap(t *testing.T) {
	engine, stages, logger := newTestEngine(t, 2)

	// Never satisfactory: the gate must proceed once the cap is reached.
	stages[StageCritique].fn = func(_ context.Context, state *PipelineState) error {
		state.IsSatisfactory = false
		return nil
	}

	state, err := engine.Run(context.Background(), NewPipelineState("url", "repo"))
	require.NoError(t, err)

	assert.Equal(t, 2, stages[StageDelegate].calls)
	assert.Equal(t, 1, stages[StagePublish].calls)
	assert.Equal(t, 1, stages[StageReport].calls)
	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "proceeding after 2 delegate attempts")
	logger.AssertLogged(t, zapcore.WarnLevel, "proceeding best-effort")
}

func TestEngine_StagesRunInOrder(t *testing.T) {
	engine, stages, _ := newTestEngine(t, 3)

	var seen []StageName
	for _, name := range StageOrder() {
		name := name
		prev := stages[name].fn
		stages[name].fn = func(ctx context.Context, state *PipelineState) error {
			seen = append(seen, name)
			if prev != nil {
				return prev(ctx, state)
			}
			return nil
		}
	}

	_, err := engine.Run(context.Background(), NewPipelineState("url", "repo"))
	require.NoError(t, err)
	assert.Equal(t, StageOrder(), seen)
}
