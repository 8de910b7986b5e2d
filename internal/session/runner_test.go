package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_SerializesCommands(t *testing.T) {
	engine := NewEngine(listeningFixture(), MicDeniedRetry)
	// A long interval keeps the ticker out of the way.
	runner := NewRunner("session-1", engine, time.Hour, nil)
	runner.Start(context.Background())
	defer runner.Stop()

	require.NoError(t, runner.RecordAnswer("p1-q1", choice(1)))
	require.NoError(t, runner.Advance(false))
	assert.ErrorIs(t, runner.RecordAnswer("p1-q1", choice(2)), ErrItemNotActive)

	snap, err := runner.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ItemIndex)
	assert.Equal(t, 1, snap.Answered)
}

func TestRunner_TickerDrivesClockEvents(t *testing.T) {
	engine := NewEngine(readingFixture(2, 0, 0), MicDeniedRetry)

	got := make(chan Event, 8)
	runner := NewRunner("session-2", engine, 2*time.Millisecond, func(events []Event) {
		for _, ev := range events {
			got <- ev
		}
	})
	runner.Start(context.Background())
	defer runner.Stop()

	select {
	case ev := <-got:
		assert.Equal(t, EventSectionCompleted, ev.Type)
		assert.Equal(t, ReasonSectionTimeout, ev.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for section completion")
	}

	snap, err := runner.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.Completed)
}

func TestRunner_CompletedMachineRejectsLateCommands(t *testing.T) {
	// An expiry processed first turns a racing user action into an explicit
	// error rather than a second transition.
	engine := NewEngine(readingFixture(1, 0, 0), MicDeniedRetry)
	runner := NewRunner("session-3", engine, time.Millisecond, nil)
	runner.Start(context.Background())
	defer runner.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := runner.Snapshot()
		require.NoError(t, err)
		if snap.Completed {
			break
		}
		require.True(t, time.Now().Before(deadline), "section never completed")
		time.Sleep(time.Millisecond)
	}

	assert.ErrorIs(t, runner.Advance(false), ErrSessionCompleted)
	assert.ErrorIs(t, runner.RecordAnswer("p1-q1", choice(0)), ErrSessionCompleted)
}

func TestRunner_StopClosesSession(t *testing.T) {
	engine := NewEngine(listeningFixture(), MicDeniedRetry)
	runner := NewRunner("session-4", engine, time.Hour, nil)
	runner.Start(context.Background())
	runner.Stop()

	assert.ErrorIs(t, runner.Advance(false), ErrSessionClosed)
	_, err := runner.Snapshot()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestRunner_SinkReceivesUserDrivenEvents(t *testing.T) {
	engine := NewEngine(writingFixture(), MicDeniedRetry)

	got := make(chan Event, 8)
	runner := NewRunner("session-5", engine, time.Hour, func(events []Event) {
		for _, ev := range events {
			got <- ev
		}
	})
	runner.Start(context.Background())
	defer runner.Stop()

	require.NoError(t, runner.RecordAnswer("t1-task", Response{Kind: ResponseText, Text: "a"}))
	require.NoError(t, runner.Advance(false))
	require.NoError(t, runner.RecordAnswer("t2-task", Response{Kind: ResponseText, Text: "b"}))
	require.NoError(t, runner.Advance(false))

	select {
	case ev := <-got:
		assert.Equal(t, EventSectionCompleted, ev.Type)
		assert.Equal(t, ReasonFinished, ev.Reason)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion event")
	}
}
