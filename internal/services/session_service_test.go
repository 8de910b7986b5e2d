package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/celprep/practice-service/internal/catalog"
	"github.com/celprep/practice-service/internal/events"
	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/repositories"
	"github.com/celprep/practice-service/internal/session"
	"github.com/celprep/practice-service/internal/utils"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSessionServiceForTest wires the service over mocks. The hour-long tick
// interval keeps wall-clock time out of these tests; clock behavior has its
// own suite.
func newSessionServiceForTest(t *testing.T, repo *MockRepository) (SessionService, *events.MockEventPublisher) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewSessionService(repo, cat, publisher, utils.NewValidator(), testLogger(), session.MicDeniedRetry, time.Hour)
	t.Cleanup(svc.Shutdown)
	return svc, publisher
}

func publishedTypes(publisher *events.MockEventPublisher) []events.EventType {
	published := publisher.GetPublishedEvents()
	types := make([]events.EventType, 0, len(published))
	for _, ev := range published {
		types = append(types, ev.Type)
	}
	return types
}

func TestSessionService_StartRequiresSectionOrFullTest(t *testing.T) {
	svc, _ := newSessionServiceForTest(t, NewMockRepository())

	_, err := svc.Start(context.Background(), "user-1", &StartSessionRequest{})
	assert.ErrorIs(t, err, ErrSectionRequired)

	_, err = svc.Start(context.Background(), "user-1", &StartSessionRequest{Section: "algebra"})
	var ve ValidationErrors
	assert.ErrorAs(t, err, &ve)
}

func TestSessionService_StartSingleSection(t *testing.T) {
	svc, publisher := newSessionServiceForTest(t, NewMockRepository())

	view, err := svc.Start(context.Background(), "user-1", &StartSessionRequest{Section: "listening"})
	require.NoError(t, err)

	assert.NotEmpty(t, view.SessionID)
	assert.False(t, view.FullTest)
	assert.Equal(t, models.SectionListening, view.State.Section)
	assert.Equal(t, 9, view.State.TotalItems)
	assert.False(t, view.State.Completed)

	require.Eventually(t, func() bool {
		return len(publisher.GetPublishedEvents()) > 0
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, publishedTypes(publisher), events.EventSessionStarted)
}

func TestSessionService_StartFullTest(t *testing.T) {
	svc, _ := newSessionServiceForTest(t, NewMockRepository())

	view, err := svc.Start(context.Background(), "user-1", &StartSessionRequest{FullTest: true})
	require.NoError(t, err)

	assert.True(t, view.FullTest)
	assert.Equal(t, session.TestNotStarted, view.State.TestPhase)
	assert.Equal(t, 4, view.State.SectionCount)

	// "Start Test" activates the first section.
	view, err = svc.Advance(context.Background(), "user-1", view.SessionID, false)
	require.NoError(t, err)
	assert.Equal(t, session.TestSectionActive, view.State.TestPhase)
	assert.Equal(t, models.SectionListening, view.State.Section)
}

func TestSessionService_OwnershipEnforced(t *testing.T) {
	svc, _ := newSessionServiceForTest(t, NewMockRepository())

	view, err := svc.Start(context.Background(), "user-1", &StartSessionRequest{Section: "reading"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "user-2", view.SessionID)
	assert.ErrorIs(t, err, ErrSessionAccessDenied)

	_, err = svc.Get(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_RecordAnswerValidation(t *testing.T) {
	svc, _ := newSessionServiceForTest(t, NewMockRepository())

	view, err := svc.Start(context.Background(), "user-1", &StartSessionRequest{Section: "listening"})
	require.NoError(t, err)

	// A choice response without a selected option is rejected before it
	// reaches the engine.
	_, err = svc.RecordAnswer(context.Background(), "user-1", view.SessionID, &RecordAnswerRequest{
		ItemID: "listening-p1-q1",
		Kind:   "choice",
	})
	var ve ValidationErrors
	assert.ErrorAs(t, err, &ve)

	_, err = svc.RecordAnswer(context.Background(), "user-1", view.SessionID, &RecordAnswerRequest{
		ItemID: "listening-p1-q1",
		Kind:   "telepathy",
	})
	assert.ErrorAs(t, err, &ve)
}

func TestSessionService_ResultsBeforeCompletion(t *testing.T) {
	svc, _ := newSessionServiceForTest(t, NewMockRepository())

	view, err := svc.Start(context.Background(), "user-1", &StartSessionRequest{Section: "listening"})
	require.NoError(t, err)

	_, err = svc.Results(context.Background(), "user-1", view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotCompleted)
}

func TestSessionService_CompleteListeningSession(t *testing.T) {
	repo := NewMockRepository()
	persisted := make(chan *models.SessionResult, 1)
	repo.ResultRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.SessionResult")).
		Run(func(args mock.Arguments) {
			persisted <- args.Get(1).(*models.SessionResult)
		}).
		Return(nil)

	svc, publisher := newSessionServiceForTest(t, repo)
	ctx := context.Background()

	view, err := svc.Start(ctx, "user-1", &StartSessionRequest{Section: "listening"})
	require.NoError(t, err)
	sessionID := view.SessionID

	cat, err := catalog.Default()
	require.NoError(t, err)
	sec, err := cat.Section(models.SectionListening)
	require.NoError(t, err)

	// Answer every question correctly and move on.
	for pi := range sec.Parts {
		for _, q := range sec.Parts[pi].Questions {
			correct := q.CorrectIndex
			view, err = svc.RecordAnswer(ctx, "user-1", sessionID, &RecordAnswerRequest{
				ItemID:      q.ID,
				Kind:        "choice",
				OptionIndex: &correct,
			})
			require.NoError(t, err)

			view, err = svc.Advance(ctx, "user-1", sessionID, false)
			require.NoError(t, err)
		}
	}
	assert.True(t, view.State.Completed)

	results, err := svc.Results(ctx, "user-1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, 9, results.Correct)
	assert.Equal(t, 9, results.Total)
	assert.Equal(t, 100, results.Percentage)
	assert.Equal(t, 9, results.CLBLevel)
	require.Len(t, results.Sections, 1)
	require.NotNil(t, results.Sections[0].Choice)
	assert.Equal(t, models.SectionListening, results.Sections[0].Section)

	// Results are idempotent.
	again, err := svc.Results(ctx, "user-1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, results, again)

	// Completion persists the terminal row and announces the finish.
	select {
	case record := <-persisted:
		assert.Equal(t, sessionID, record.ID)
		assert.Equal(t, "user-1", record.UserID)
		assert.Equal(t, models.SectionListening, record.Section)
		assert.Equal(t, 100, record.Percentage)
		assert.Equal(t, 9, record.CLBLevel)
		assert.NotEmpty(t, record.Breakdown)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result persistence")
	}

	require.Eventually(t, func() bool {
		for _, eventType := range publishedTypes(publisher) {
			if eventType == events.EventSessionFinished {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, publishedTypes(publisher), events.EventSectionCompleted)
}

func TestSessionService_ConfirmationGatePassesThrough(t *testing.T) {
	svc, _ := newSessionServiceForTest(t, NewMockRepository())
	ctx := context.Background()

	view, err := svc.Start(ctx, "user-1", &StartSessionRequest{Section: "listening"})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, "user-1", view.SessionID, false)
	assert.ErrorIs(t, err, session.ErrConfirmationRequired)

	view, err = svc.Advance(ctx, "user-1", view.SessionID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, view.State.ItemIndex)
}

func TestSessionService_AbandonDiscardsSession(t *testing.T) {
	svc, publisher := newSessionServiceForTest(t, NewMockRepository())
	ctx := context.Background()

	view, err := svc.Start(ctx, "user-1", &StartSessionRequest{Section: "writing"})
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(ctx, "user-1", view.SessionID))

	_, err = svc.Get(ctx, "user-1", view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.Eventually(t, func() bool {
		for _, eventType := range publishedTypes(publisher) {
			if eventType == events.EventSessionAbandoned {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionService_HistoryDelegatesToRepository(t *testing.T) {
	repo := NewMockRepository()
	stored := []*models.SessionResult{{ID: "r1", UserID: "user-1", Percentage: 80}}
	repo.ResultRepo.On("GetByUser", mock.Anything, "user-1", mock.Anything).
		Return(stored, int64(1), nil)

	svc, _ := newSessionServiceForTest(t, repo)

	results, total, err := svc.History(context.Background(), "user-1", repositories.ResultFilters{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, stored, results)
	repo.ResultRepo.AssertExpectations(t)
}
