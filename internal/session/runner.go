package session

import (
	"context"
	"errors"
	"time"
)

// Machine is the state-machine surface shared by a single-section Engine and
// a complete-test TestRun.
type Machine interface {
	Tick() []Event
	Advance(confirmed bool) ([]Event, error)
	Retreat() error
	RecordAnswer(itemID string, resp Response) error
	StopRecording(recordingID string) ([]Event, error)
	SetMicrophonePermission(granted bool) []Event
	Snapshot() Snapshot
	Completed() bool
}

// ErrSessionClosed is returned for commands sent after the runner shut down
// (the navigation-away analog: all live state is discarded, nothing is
// recovered).
var ErrSessionClosed = errors.New("session closed")

// Runner owns one live session. Clock ticks and user commands feed a single
// queue consumed by one goroutine, so a tick-driven auto-advance and a
// user-driven advance arriving together resolve deterministically: the first
// processed wins and the second becomes a no-op or an explicit error.
type Runner struct {
	ID      string
	machine Machine

	interval time.Duration
	sink     func([]Event)

	cmds   chan func()
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner wraps a machine. The sink receives every batch of events the
// machine emits; it is called from the runner goroutine and must not block.
func NewRunner(id string, m Machine, interval time.Duration, sink func([]Event)) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	if sink == nil {
		sink = func([]Event) {}
	}
	return &Runner{
		ID:       id,
		machine:  m,
		interval: interval,
		sink:     sink,
		cmds:     make(chan func()),
		done:     make(chan struct{}),
	}
}

// Start launches the session loop. The loop stops when ctx is canceled or
// Stop is called.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	go r.loop(ctx)
}

// Stop tears the session down. Pending and future commands fail with
// ErrSessionClosed.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.done
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.emit(r.machine.Tick())
		case cmd := <-r.cmds:
			cmd()
		}
	}
}

func (r *Runner) emit(events []Event) {
	if len(events) > 0 {
		r.sink(events)
	}
}

// Do runs fn against the machine on the session goroutine and returns its
// error. Events emitted inside fn must be forwarded via emit.
func (r *Runner) Do(fn func(m Machine, emit func([]Event)) error) error {
	reply := make(chan error, 1)
	cmd := func() {
		reply <- fn(r.machine, r.emit)
	}
	select {
	case r.cmds <- cmd:
		return <-reply
	case <-r.done:
		return ErrSessionClosed
	}
}

// Advance forwards a user Next action.
func (r *Runner) Advance(confirmed bool) error {
	return r.Do(func(m Machine, emit func([]Event)) error {
		events, err := m.Advance(confirmed)
		if err != nil {
			return err
		}
		emit(events)
		return nil
	})
}

// Retreat forwards a user Back action.
func (r *Runner) Retreat() error {
	return r.Do(func(m Machine, emit func([]Event)) error {
		return m.Retreat()
	})
}

// RecordAnswer stores a response for the active item.
func (r *Runner) RecordAnswer(itemID string, resp Response) error {
	return r.Do(func(m Machine, emit func([]Event)) error {
		return m.RecordAnswer(itemID, resp)
	})
}

// StopRecording ends the active speaking recording.
func (r *Runner) StopRecording(recordingID string) error {
	return r.Do(func(m Machine, emit func([]Event)) error {
		events, err := m.StopRecording(recordingID)
		if err != nil {
			return err
		}
		emit(events)
		return nil
	})
}

// SetMicrophonePermission reports the permission prompt outcome.
func (r *Runner) SetMicrophonePermission(granted bool) error {
	return r.Do(func(m Machine, emit func([]Event)) error {
		emit(m.SetMicrophonePermission(granted))
		return nil
	})
}

// Snapshot returns a consistent view of the session state.
func (r *Runner) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := r.Do(func(m Machine, emit func([]Event)) error {
		snap = m.Snapshot()
		return nil
	})
	return snap, err
}

// Machine exposes the underlying machine for scoring after completion. Only
// safe once the runner is stopped or the machine is completed.
func (r *Runner) Machine() Machine {
	return r.machine
}
