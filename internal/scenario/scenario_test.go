package scenario

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestLoadValid(t *testing.T) {
	sc, err := Load(strings.NewReader(`
duration: 3s
tick: 250ms
units: 2
steps:
  - at: 0s
    action: enqueue
  - at: 1500ms
    action: enqueue
    priority: expedited
  - at: 2s
    action: remove_unit
run_until: 10s
`))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, sc.Duration)
	assert.Equal(t, 250*time.Millisecond, sc.Tick)
	assert.Equal(t, 2, sc.initialUnits())
	assert.Equal(t, 10*time.Second, sc.end())
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, model.PriorityStandard, sc.Steps[0].Priority, "empty priority normalizes to standard")
	assert.Equal(t, 1500*time.Millisecond, sc.Steps[1].At)
	assert.Equal(t, ActionRemoveUnit, sc.Steps[2].Action)
}

func TestLoadDefaults(t *testing.T) {
	sc, err := Load(strings.NewReader(`
steps:
  - at: 4s
    action: add_unit
`))
	require.NoError(t, err)

	assert.Equal(t, 1, sc.initialUnits())
	assert.Equal(t, 4*time.Second, sc.end(), "run_until falls back to the last step")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "unknown action",
			doc:     "steps:\n  - at: 0s\n    action: launch\n",
			wantErr: ErrInvalidAction,
		},
		{
			name:    "unknown priority",
			doc:     "steps:\n  - at: 0s\n    action: enqueue\n    priority: vip\n",
			wantErr: model.ErrInvalidPriority,
		},
		{
			name:    "steps out of order",
			doc:     "steps:\n  - at: 2s\n    action: add_unit\n  - at: 1s\n    action: add_unit\n",
			wantErr: ErrStepOrder,
		},
		{name: "priority on non-enqueue", doc: "steps:\n  - at: 0s\n    action: add_unit\n    priority: expedited\n"},
		{name: "unknown field", doc: "unitz: 3\n"},
		{name: "bad duration", doc: "duration: soon\n"},
		{name: "negative units", doc: "units: -1\n"},
		{name: "run_until before last step", doc: "steps:\n  - at: 5s\n    action: add_unit\nrun_until: 1s\n"},
		{name: "empty document", doc: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error %v should wrap %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does_not_exist.yaml")
	require.Error(t, err)
}

func TestRunCancelAndResume(t *testing.T) {
	sc, err := LoadFile("testdata/cancel_and_resume.yaml")
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, nil, discardLogger())
	require.NoError(t, err)

	// Order 1 restarts at 6s and finishes at 16s on unit 2.
	require.Len(t, res.State.Completed, 1)
	assert.Equal(t, int64(1), res.State.Completed[0].ID)
	require.NotNil(t, res.State.Completed[0].CompletedAt)
	assert.Equal(t, Epoch.Add(16*time.Second), *res.State.Completed[0].CompletedAt)
	assert.Empty(t, res.State.Pending)
	require.Len(t, res.State.Units, 1)
	assert.Equal(t, int64(2), res.State.Units[0].ID)
	assert.True(t, res.State.Units[0].Idle())

	var kinds []string
	for _, ev := range res.Events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []string{
		model.EventUnitAdded,
		model.EventOrderEnqueued,
		model.EventOrderAssigned,
		model.EventOrderRequeued,
		model.EventUnitRemoved,
		model.EventUnitAdded,
		model.EventOrderAssigned,
		model.EventOrderCompleted,
	}, kinds)
}

func TestRunPriorityMix(t *testing.T) {
	sc, err := LoadFile("testdata/priority_mix.yaml")
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, nil, discardLogger())
	require.NoError(t, err)

	// 2s each: order 1 done at 2s, expedited order 3 at 4s, order 2 running.
	var done []int64
	for _, o := range res.State.Completed {
		done = append(done, o.ID)
	}
	assert.Equal(t, []int64{1, 3}, done)
	require.Len(t, res.State.Units, 1)
	require.NotNil(t, res.State.Units[0].CurrentOrder)
	assert.Equal(t, int64(2), res.State.Units[0].CurrentOrder.ID)
	assert.Equal(t, Epoch.Add(5*time.Second), res.State.Now)
}

type failingJournal struct{ calls int }

func (j *failingJournal) RecordEvent(context.Context, model.Event) error {
	j.calls++
	return errors.New("disk full")
}

func TestRunForwardsToJournal(t *testing.T) {
	sc, err := Load(strings.NewReader("steps:\n  - at: 0s\n    action: enqueue\n"))
	require.NoError(t, err)

	j := &failingJournal{}
	res, err := Run(context.Background(), sc, j, discardLogger())
	require.NoError(t, err, "journal failures are logged, not fatal")
	assert.Equal(t, len(res.Events), j.calls)
}

func TestRunCancelledContext(t *testing.T) {
	sc, err := Load(strings.NewReader("steps:\n  - at: 0s\n    action: enqueue\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, sc, nil, discardLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReset(t *testing.T) {
	sc, err := Load(strings.NewReader(`
units: 2
steps:
  - at: 0s
    action: enqueue
  - at: 1s
    action: reset
  - at: 1s
    action: clear_completed
run_until: 30s
`))
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, nil, discardLogger())
	require.NoError(t, err)

	assert.Empty(t, res.State.Completed)
	assert.Empty(t, res.State.Pending)
	require.Len(t, res.State.Units, 2)
	assert.Equal(t, int64(3), res.State.Units[0].ID)
	assert.Equal(t, int64(4), res.State.Units[1].ID)
}
