package scheduler

import (
	"context"
	"sync"

	"github.com/badu/crossmacro"
)

// HotkeyRunner dispatches crossmacro.ShortcutTask playback when notified
// that a task's bound hotkey fired. Registering the hotkey itself (a
// global key listener) is out of scope (§1 Non-goals); an external
// registrar — the GUI shell, or a capture-provider-backed listener —
// calls TriggerHotkey whenever it observes the configured chord.
type HotkeyRunner struct {
	mu     sync.Mutex
	runner *runner
	tasks  map[string]crossmacro.ShortcutTask
	held   map[string]chan bool
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHotkeyRunner builds a HotkeyRunner driving player, loading macro
// files through loader.
func NewHotkeyRunner(player Player, loader SequenceLoader) *HotkeyRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &HotkeyRunner{
		runner: &runner{player: player, loader: loader},
		tasks:  make(map[string]crossmacro.ShortcutTask),
		held:   make(map[string]chan bool),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register binds taskID to task, replacing any prior binding.
func (h *HotkeyRunner) Register(taskID string, task crossmacro.ShortcutTask) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks[taskID] = task
}

// Unregister removes taskID's binding, if any.
func (h *HotkeyRunner) Unregister(taskID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.tasks, taskID)
	delete(h.held, taskID)
}

// TriggerHotkey notifies the runner that taskID's hotkey transitioned.
// pressed is only meaningful for RunWhileHeld tasks, where it starts or
// stops the held run; LoopEnabled and plain tasks start one independent
// run per press and ignore release notifications.
func (h *HotkeyRunner) TriggerHotkey(taskID string, pressed bool) {
	h.mu.Lock()
	task, ok := h.tasks[taskID]
	if !ok {
		h.mu.Unlock()
		return
	}

	if !task.RunWhileHeld {
		h.mu.Unlock()
		if !pressed {
			return
		}
		go func() {
			_ = h.runner.run(h.ctx, task.MacroPath, task.Speed, task.LoopEnabled, false, task.LoopCount, task.RepeatDelayMs, nil)
		}()
		return
	}

	ch, inFlight := h.held[taskID]
	if pressed {
		if inFlight {
			h.mu.Unlock()
			return
		}
		ch = make(chan bool, 1)
		ch <- true
		h.held[taskID] = ch
		h.mu.Unlock()

		go func() {
			_ = h.runner.run(h.ctx, task.MacroPath, task.Speed, false, true, task.LoopCount, task.RepeatDelayMs, ch)
			h.mu.Lock()
			delete(h.held, taskID)
			h.mu.Unlock()
		}()
		return
	}

	if inFlight {
		ch <- false
	}
	h.mu.Unlock()
}

// Close cancels every in-flight held run.
func (h *HotkeyRunner) Close() {
	h.cancel()
}
