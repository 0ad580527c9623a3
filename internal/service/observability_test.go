package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapUseCaseObserver_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := NewZapUseCaseObserver(zap.New(core))
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:     "unit-create-batch",
		Duration: 15 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{FieldEntity: "unit", FieldRowsWritten: 3},
	})
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name: "photo-add",
		Err:  errors.New("bucket unavailable"),
	})

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0]
	assert.Equal(t, zapcore.InfoLevel, ok.Level)
	assert.Equal(t, "service_use_case", ok.Message)
	fields := ok.ContextMap()
	assert.Equal(t, "unit-create-batch", fields["use_case"])
	assert.Equal(t, int64(15), fields["duration_ms"])
	assert.Equal(t, true, fields["success"])
	assert.Equal(t, "unit", fields[FieldEntity])
	assert.EqualValues(t, 3, fields[FieldRowsWritten])

	failed := entries[1]
	assert.Equal(t, zapcore.ErrorLevel, failed.Level)
	assert.Equal(t, "bucket unavailable", failed.ContextMap()["error"])
}

func TestNewZapUseCaseObserver_NilLogger(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewZapUseCaseObserver(nil))
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop([]UseCaseObserver{nil}))

	single := &recordingObserver{}
	assert.Same(t, single, useCaseObserverOrNoop([]UseCaseObserver{nil, single}))

	a, b := &recordingObserver{}, &recordingObserver{}
	multi := useCaseObserverOrNoop([]UseCaseObserver{a, b})
	multi.ObserveUseCase(context.Background(), UseCaseEvent{Name: "x"})
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestServices_EmitUseCaseEvents(t *testing.T) {
	rec := &recordingObserver{}
	env := setupEnv(t, rec)
	ctx := env.ctx()

	p := env.createProject(t, "Obra")
	env.createStages(t, p.ID, "A", "B")
	env.createUnit(t, p.ID, "101")
	_, err := env.propagation.ApplyTemplate(ctx, p.ID)
	require.NoError(t, err)

	creates := rec.named("stage-bulk-create")
	require.Len(t, creates, 1)
	assert.Equal(t, 2, creates[0].Fields[FieldRowsWritten])
	assert.Empty(t, rec.named("stage-create"))

	inst := rec.named("instantiate-stages")
	require.Len(t, inst, 1)
	assert.True(t, inst[0].Success)
	assert.Equal(t, "unit_stage", inst[0].Fields[FieldEntity])
	assert.Equal(t, 2, inst[0].Fields[FieldRowsWritten])

	_, err = env.units.CreateBatch(ctx, "missing", []string{"1"})
	require.Error(t, err)
	batches := rec.named("unit-create-batch")
	require.Len(t, batches, 2)
	last := batches[1]
	assert.False(t, last.Success)
	assert.True(t, apperr.IsNotFound(last.Err))
	assert.Equal(t, 0, last.Fields[FieldRowsWritten])
}
