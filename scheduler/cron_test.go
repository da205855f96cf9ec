package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/scheduler"
	"github.com/stretchr/testify/require"
)

func TestSchedulerAddsAndRemovesEveryMinuteTask(t *testing.T) {
	player := &fakePlayer{}
	s := scheduler.NewScheduler(player, fakeLoader(demoSequence))

	task := crossmacro.ScheduledTask{MacroPath: "demo.json", Schedule: "* * * * *", Speed: 1.0}
	require.NoError(t, s.AddTask("nightly", task))

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	// The cron tick cadence is whole minutes; exercise registration and
	// removal without waiting on a real tick.
	s.RemoveTask("nightly")
}

func TestSchedulerAddTaskRejectsDuplicateID(t *testing.T) {
	player := &fakePlayer{}
	s := scheduler.NewScheduler(player, fakeLoader(demoSequence))

	task := crossmacro.ScheduledTask{MacroPath: "demo.json", Schedule: "@daily", Speed: 1.0}
	require.NoError(t, s.AddTask("daily", task))
	require.Error(t, s.AddTask("daily", task))
}

func TestSchedulerAddTaskRejectsInvalidSchedule(t *testing.T) {
	player := &fakePlayer{}
	s := scheduler.NewScheduler(player, fakeLoader(demoSequence))

	err := s.AddTask("bad", crossmacro.ScheduledTask{MacroPath: "demo.json", Schedule: "not a cron expression", Speed: 1.0})
	require.Error(t, err)
}

func TestSchedulerRemoveUnknownTaskIsNoop(t *testing.T) {
	s := scheduler.NewScheduler(&fakePlayer{}, fakeLoader(demoSequence))
	s.RemoveTask("does-not-exist")
}

func TestSchedulerStopDrainsBeforeReturning(t *testing.T) {
	player := &fakePlayer{}
	s := scheduler.NewScheduler(player, fakeLoader(demoSequence))
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestSchedulerAcceptsEveryStyleSchedule(t *testing.T) {
	s := scheduler.NewScheduler(&fakePlayer{}, fakeLoader(demoSequence))
	task := crossmacro.ScheduledTask{MacroPath: "demo.json", Schedule: "@every 1m", Speed: 2.0, LoopEnabled: true, LoopCount: 3}
	require.NoError(t, s.AddTask("loop", task))
}
