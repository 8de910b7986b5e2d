package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celprep/practice-service/internal/models"
)

// completeTestFixture keeps each section minimal so tests walk the whole
// exam sequence quickly.
func completeTestFixture() []models.Section {
	listening := models.Section{
		Kind:  models.SectionListening,
		Title: "Listening",
		Parts: []models.ContentPart{questionPart("lp1", 1)},
	}
	reading := models.Section{
		Kind:      models.SectionReading,
		Title:     "Reading",
		TimeLimit: 600,
		Parts:     []models.ContentPart{questionPart("rp1", 1)},
	}
	writing := models.Section{
		Kind:      models.SectionWriting,
		Title:     "Writing",
		TimeLimit: 600,
		Parts: []models.ContentPart{{
			ID:    "wt1",
			Title: "Task 1",
			Task:  &models.Task{ID: "wt1-task", Prompt: "p", ResponseTime: 60},
		}},
	}
	speaking := models.Section{
		Kind:  models.SectionSpeaking,
		Title: "Speaking",
		Parts: []models.ContentPart{{
			ID:    "st1",
			Title: "Task 1",
			Task:  &models.Task{ID: "st1-task", Prompt: "p", PrepTime: 5, ResponseTime: 30},
		}},
	}
	return []models.Section{listening, reading, writing, speaking}
}

func TestTestRun_IgnoresEverythingBeforeStart(t *testing.T) {
	run := NewTestRun(completeTestFixture(), MicDeniedRetry)

	assert.Empty(t, run.Tick())
	assert.ErrorIs(t, run.RecordAnswer("lp1-q1", choice(0)), ErrSessionCompleted)
	assert.ErrorIs(t, run.Retreat(), ErrSessionCompleted)

	snap := run.Snapshot()
	assert.Equal(t, TestNotStarted, snap.TestPhase)
	assert.False(t, snap.Completed)
}

func TestTestRun_StartActivatesFirstSection(t *testing.T) {
	run := NewTestRun(completeTestFixture(), MicDeniedRetry)

	_, err := run.Advance(false)
	require.NoError(t, err)

	snap := run.Snapshot()
	assert.Equal(t, TestSectionActive, snap.TestPhase)
	assert.Equal(t, 0, snap.SectionIndex)
	assert.Equal(t, 4, snap.SectionCount)
	assert.Equal(t, models.SectionListening, snap.Section)
}

func TestTestRun_WalksAllSectionsThenFinishes(t *testing.T) {
	run := NewTestRun(completeTestFixture(), MicDeniedRetry)

	_, err := run.Advance(false) // Start Test
	require.NoError(t, err)

	// Listening: answer the single question, completing it activates Reading.
	require.NoError(t, run.RecordAnswer("lp1-q1", choice(1)))
	events, err := run.Advance(false)
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventSectionCompleted}, eventTypes(events))
	assert.Equal(t, models.SectionReading, run.Snapshot().Section)
	assert.Equal(t, 1, run.Snapshot().SectionIndex)

	// Reading.
	require.NoError(t, run.RecordAnswer("rp1-q1", choice(1)))
	_, err = run.Advance(false)
	require.NoError(t, err)
	assert.Equal(t, models.SectionWriting, run.Snapshot().Section)

	// Writing.
	require.NoError(t, run.RecordAnswer("wt1-task", Response{Kind: ResponseText, Text: "an answer"}))
	_, err = run.Advance(false)
	require.NoError(t, err)
	assert.Equal(t, models.SectionSpeaking, run.Snapshot().Section)

	// Speaking: skip prep, record, stop. Finishing the final section finishes
	// the run; there is no fifth section.
	run.SetMicrophonePermission(true)
	_, err = run.Advance(false)
	require.NoError(t, err)
	events, err = run.StopRecording("rec-1")
	require.NoError(t, err)
	assert.Contains(t, eventTypes(events), EventTestFinished)

	snap := run.Snapshot()
	assert.Equal(t, TestFinished, snap.TestPhase)
	assert.Equal(t, 3, snap.SectionIndex)
	assert.True(t, snap.Completed)
	assert.True(t, run.Completed())

	_, err = run.Advance(false)
	assert.ErrorIs(t, err, ErrSessionCompleted)

	engines := run.SectionEngines()
	require.Len(t, engines, 4)
	for _, engine := range engines {
		assert.True(t, engine.Completed())
	}
}

func TestTestRun_SectionTimeoutPromotesNextSection(t *testing.T) {
	sections := completeTestFixture()
	sections[1].TimeLimit = 3

	run := NewTestRun(sections, MicDeniedRetry)
	_, err := run.Advance(false)
	require.NoError(t, err)

	// Finish Listening normally.
	require.NoError(t, run.RecordAnswer("lp1-q1", choice(1)))
	_, err = run.Advance(false)
	require.NoError(t, err)
	require.Equal(t, models.SectionReading, run.Snapshot().Section)

	// Let the Reading clock run out; the run moves on without user action.
	var events []Event
	for i := 0; i < 3; i++ {
		events = append(events, run.Tick()...)
	}
	assert.Equal(t, []EventType{EventSectionCompleted}, eventTypes(events))
	assert.Equal(t, models.SectionWriting, run.Snapshot().Section)
	assert.Equal(t, 2, run.Snapshot().SectionIndex)
}
