package cron

import (
	"context"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-motion"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type countingEffect struct {
	applies *int
}

func (e *countingEffect) Apply(motion.Target) error {
	*e.applies++
	return nil
}

func (e *countingEffect) Step(motion.Target, float64) {}
func (e *countingEffect) Remove(motion.Target)        {}
func (e *countingEffect) Attrs() motion.Attr          { return 0 }
func (e *countingEffect) Clone() motion.Effect        { return &countingEffect{applies: e.applies} }

func spawnFixture() (*motion.Scheduler, *motion.Action, motion.Target, *int) {
	world := motion.New(motion.WithLogger(nopLogger{}))
	applies := 0
	proto := motion.NewAction(&countingEffect{applies: &applies}, motion.Forever())
	target := motion.Single(motion.NewSprite("s", cp.Vector{X: 1, Y: 1}))
	return world, proto, target, &applies
}

func TestScheduleApplyValidation(t *testing.T) {
	s := NewSpawner(WithLogger(nopLogger{}))
	world, proto, target, _ := spawnFixture()

	_, err := s.ScheduleApply("", world, proto, target)
	require.Error(t, err)

	_, err = s.ScheduleApply("* * * * *", nil, proto, target)
	require.Error(t, err)

	_, err = s.ScheduleApply("* * * * *", world, nil, target)
	require.Error(t, err)

	_, err = s.ScheduleApply("not a cron expr", world, proto, target)
	require.Error(t, err)
}

func TestScheduleApplyRegistersHandle(t *testing.T) {
	s := NewSpawner(WithLogger(nopLogger{}))
	world, proto, target, _ := spawnFixture()

	handle, err := s.ScheduleApply("@hourly", world, proto, target, motion.WithTag("spawned"))
	require.NoError(t, err)
	assert.Equal(t, SpawnStatusScheduled, handle.Status())
	assert.NotZero(t, handle.ID())

	handle.Cancel()
	assert.Equal(t, SpawnStatusCanceled, handle.Status())
	select {
	case <-handle.Done():
	default:
		t.Fatal("expected Done closed after cancel")
	}
}

func TestScheduleApplyAfterSpawnsOnNextTick(t *testing.T) {
	s := NewSpawner(WithLogger(nopLogger{}))
	world, proto, target, applies := spawnFixture()

	handle, err := s.ScheduleApplyAfter(time.Millisecond, world, proto, target, motion.WithTag("delayed"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		world.Update(0.016)
		return handle.Status() == SpawnStatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, *applies, "prototype clone applied once")
	// the prototype itself stays unregistered
	assert.Len(t, world.ActionsFor(target, "delayed"), 1)
	assert.NoError(t, handle.Err())
}

func TestScheduleApplyAfterCancelBeforeFire(t *testing.T) {
	s := NewSpawner(WithLogger(nopLogger{}))
	world, proto, target, applies := spawnFixture()

	handle, err := s.ScheduleApplyAfter(time.Hour, world, proto, target)
	require.NoError(t, err)
	handle.Cancel()

	assert.Equal(t, SpawnStatusCanceled, handle.Status())
	world.Update(0.016)
	assert.Zero(t, *applies, "canceled spawn must not apply")
}

func TestSpawnerStopMarksHandles(t *testing.T) {
	s := NewSpawner(WithLogger(nopLogger{}))
	world, proto, target, _ := spawnFixture()

	handle, err := s.ScheduleApply("@hourly", world, proto, target)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, SpawnStatusStopped, handle.Status())
	select {
	case <-handle.Done():
	default:
		t.Fatal("expected Done closed after Stop")
	}
}

func TestSpawnerFailedApplyReportsError(t *testing.T) {
	var reported error
	s := NewSpawner(
		WithLogger(nopLogger{}),
		WithErrorHandler(func(err error) { reported = err }),
	)
	world, proto, _, _ := spawnFixture()

	// empty group target fails Scheduler.Apply when the spawn fires
	handle, err := s.ScheduleApplyAfter(time.Millisecond, world, proto, motion.Group())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		world.Update(0.016)
		return handle.Status() == SpawnStatusFailed
	}, 2*time.Second, 5*time.Millisecond)

	assert.Error(t, handle.Err())
	assert.Error(t, reported)
}
