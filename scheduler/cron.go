package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/badu/crossmacro"
)

// Scheduler dispatches crossmacro.ScheduledTask playback on calendar
// schedules, via github.com/robfig/cron/v3 — the one dependency this
// module adds with no pack-example precedent (see DESIGN.md).
//
// A calendar tick has no notion of "held": a ScheduledTask whose
// RunWhileHeld is set (the mutual-exclusion field it shares with
// ShortcutTask) always runs as ModeOnce, since there is no press/release
// signal to bound a held interval against.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	runner  *runner
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler builds a Scheduler driving player, loading macro files
// through loader.
func NewScheduler(player Player, loader SequenceLoader) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		runner:  &runner{player: player, loader: loader},
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddTask registers task under id, parsing task.Schedule as a standard
// five-field cron expression or a descriptor such as "@daily" or
// "@every 1m". id must be unique among currently registered tasks.
func (s *Scheduler) AddTask(id string, task crossmacro.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		return fmt.Errorf("scheduler: task %q already registered", id)
	}

	entryID, err := s.cron.AddFunc(task.Schedule, func() {
		_ = s.runner.run(s.ctx, task.MacroPath, task.Speed, task.LoopEnabled, false, task.LoopCount, task.RepeatDelayMs, nil)
	})
	if err != nil {
		return fmt.Errorf("scheduler: parse schedule %q for task %q: %w", task.Schedule, id, err)
	}

	s.entries[id] = entryID
	return nil
}

// RemoveTask unregisters id, if present. Removing an unknown id is a
// no-op.
func (s *Scheduler) RemoveTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
}

// Start mounts the cron tick loop on its own goroutine (§5 "scheduler
// tick").
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels in-flight runs and waits for the cron loop to drain, or
// until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	drained := s.cron.Stop()
	s.cancel()
	select {
	case <-drained.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
