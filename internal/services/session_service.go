package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/celprep/practice-service/internal/catalog"
	"github.com/celprep/practice-service/internal/events"
	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/repositories"
	"github.com/celprep/practice-service/internal/scoring"
	"github.com/celprep/practice-service/internal/session"
	"github.com/celprep/practice-service/internal/utils"
)

// ===== REQUEST/RESPONSE STRUCTS =====

// StartSessionRequest opens a practice session over one section or the
// complete four-section test.
type StartSessionRequest struct {
	Section  string `json:"section" validate:"omitempty,section_kind"`
	FullTest bool   `json:"full_test"`
}

type RecordAnswerRequest struct {
	ItemID      string `json:"item_id" validate:"required"`
	Kind        string `json:"kind" validate:"required,response_kind"`
	OptionIndex *int   `json:"option_index" validate:"required_if=Kind choice,omitempty,min=0"`
	Text        string `json:"text"`
	RecordingID string `json:"recording_id"`
}

type StopRecordingRequest struct {
	RecordingID string `json:"recording_id" validate:"required"`
}

// SessionView is the API-facing state of a live session.
type SessionView struct {
	SessionID string           `json:"session_id"`
	FullTest  bool             `json:"full_test"`
	StartedAt time.Time        `json:"started_at"`
	State     session.Snapshot `json:"state"`
}

// SpeakingOutcome reports what a speaking task produced. Recordings are
// opaque handles; no audio is stored or assessed server-side.
type SpeakingOutcome struct {
	TaskID      string `json:"task_id"`
	Answered    bool   `json:"answered"`
	RecordingID string `json:"recording_id,omitempty"`
}

// WritingResult pairs the heuristic score with canned feedback lines.
type WritingResult struct {
	Score    scoring.WritingScore `json:"score"`
	Feedback []string             `json:"feedback"`
}

// SectionResults is the per-section slice of a results payload. Exactly one
// of Choice, Writing or Speaking is populated, matching the section kind.
type SectionResults struct {
	Section  models.SectionKind    `json:"section"`
	Choice   *scoring.SectionScore `json:"choice,omitempty"`
	Writing  []WritingResult       `json:"writing,omitempty"`
	Speaking []SpeakingOutcome     `json:"speaking,omitempty"`
}

// SessionResults is the terminal payload of a completed session. Scoring is
// deterministic: recomputing over the same responses yields the same payload.
type SessionResults struct {
	SessionID  string           `json:"session_id"`
	FullTest   bool             `json:"full_test"`
	Sections   []SectionResults `json:"sections"`
	Correct    int              `json:"correct"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	CLBLevel   int              `json:"clb_level"`
	TimeSpent  int              `json:"time_spent"`
}

// ===== SERVICE INTERFACE =====

// SessionService manages live practice sessions. All live state is held in
// memory: a session that is abandoned or lost to a restart is gone, only the
// terminal results of completed sessions persist.
type SessionService interface {
	Start(ctx context.Context, userID string, req *StartSessionRequest) (*SessionView, error)
	Get(ctx context.Context, userID, sessionID string) (*SessionView, error)
	Advance(ctx context.Context, userID, sessionID string, confirmed bool) (*SessionView, error)
	Retreat(ctx context.Context, userID, sessionID string) (*SessionView, error)
	RecordAnswer(ctx context.Context, userID, sessionID string, req *RecordAnswerRequest) (*SessionView, error)
	StopRecording(ctx context.Context, userID, sessionID string, req *StopRecordingRequest) (*SessionView, error)
	SetMicrophonePermission(ctx context.Context, userID, sessionID string, granted bool) (*SessionView, error)
	Results(ctx context.Context, userID, sessionID string) (*SessionResults, error)
	Abandon(ctx context.Context, userID, sessionID string) error
	History(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.SessionResult, int64, error)
	Shutdown()
}

type liveSession struct {
	id        string
	userID    string
	fullTest  bool
	section   models.SectionKind
	startedAt time.Time

	runner   *session.Runner
	finalize sync.Once
}

type sessionService struct {
	repo      repositories.Repository
	catalog   *catalog.Catalog
	publisher events.EventPublisher
	validator *utils.Validator
	logger    *slog.Logger

	micPolicy    session.MicPolicy
	tickInterval time.Duration

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

// NewSessionService creates a new session service with its dependencies
func NewSessionService(
	repo repositories.Repository,
	cat *catalog.Catalog,
	publisher events.EventPublisher,
	validator *utils.Validator,
	logger *slog.Logger,
	micPolicy session.MicPolicy,
	tickInterval time.Duration,
) SessionService {
	return &sessionService{
		repo:         repo,
		catalog:      cat,
		publisher:    publisher,
		validator:    validator,
		logger:       logger,
		micPolicy:    micPolicy,
		tickInterval: tickInterval,
		sessions:     make(map[string]*liveSession),
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, userID string, req *StartSessionRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !req.FullTest && req.Section == "" {
		return nil, ErrSectionRequired
	}

	var machine session.Machine
	var kind models.SectionKind
	if req.FullTest {
		sections, err := s.catalog.FullTest()
		if err != nil {
			return nil, fmt.Errorf("failed to load complete test content: %w", err)
		}
		machine = session.NewTestRun(sections, s.micPolicy)
	} else {
		kind = models.SectionKind(req.Section)
		sec, err := s.catalog.Section(kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load section content: %w", err)
		}
		machine = session.NewEngine(sec, s.micPolicy)
	}

	live := &liveSession{
		id:        uuid.New().String(),
		userID:    userID,
		fullTest:  req.FullTest,
		section:   kind,
		startedAt: time.Now(),
	}
	live.runner = session.NewRunner(live.id, machine, s.tickInterval, s.sinkFor(live, machine))
	live.runner.Start(context.Background())

	s.mu.Lock()
	s.sessions[live.id] = live
	s.mu.Unlock()

	s.logger.Info("Practice session started",
		"session_id", live.id,
		"user_id", userID,
		"section", kind,
		"full_test", req.FullTest)

	go s.publish(events.EventSessionStarted, events.SessionStartedEvent{
		SessionID: live.id,
		UserID:    userID,
		Section:   kind,
		FullTest:  req.FullTest,
		StartedAt: live.startedAt,
	})

	return s.view(live)
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	live, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.view(live)
}

func (s *sessionService) Advance(ctx context.Context, userID, sessionID string, confirmed bool) (*SessionView, error) {
	live, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := live.runner.Advance(confirmed); err != nil {
		return nil, err
	}
	return s.view(live)
}

func (s *sessionService) Retreat(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	live, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := live.runner.Retreat(); err != nil {
		return nil, err
	}
	return s.view(live)
}

func (s *sessionService) RecordAnswer(ctx context.Context, userID, sessionID string, req *RecordAnswerRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	live, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}

	resp := session.Response{Kind: session.ResponseKind(req.Kind)}
	switch resp.Kind {
	case session.ResponseChoice:
		resp.OptionIndex = *req.OptionIndex
	case session.ResponseText:
		resp.Text = req.Text
	case session.ResponseRecording:
		resp.RecordingID = req.RecordingID
	}

	if err := live.runner.RecordAnswer(req.ItemID, resp); err != nil {
		return nil, err
	}
	return s.view(live)
}

func (s *sessionService) StopRecording(ctx context.Context, userID, sessionID string, req *StopRecordingRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	live, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := live.runner.StopRecording(req.RecordingID); err != nil {
		return nil, err
	}
	return s.view(live)
}

func (s *sessionService) SetMicrophonePermission(ctx context.Context, userID, sessionID string, granted bool) (*SessionView, error) {
	live, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := live.runner.SetMicrophonePermission(granted); err != nil {
		return nil, err
	}
	return s.view(live)
}

// Results computes the score breakdown of a completed session. The machine
// is read on the session goroutine, so a still-ticking clock cannot race the
// computation.
func (s *sessionService) Results(ctx context.Context, userID, sessionID string) (*SessionResults, error) {
	live, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}

	var results *SessionResults
	err = live.runner.Do(func(m session.Machine, _ func([]session.Event)) error {
		if !m.Completed() {
			return ErrSessionNotCompleted
		}
		results = s.buildResults(live, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Abandon tears a live session down. Mirrors navigating away mid-test: all
// progress is discarded, nothing is persisted.
func (s *sessionService) Abandon(ctx context.Context, userID, sessionID string) error {
	live, err := s.owned(sessionID, userID)
	if err != nil {
		return err
	}

	snap, snapErr := live.runner.Snapshot()
	live.runner.Stop()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.logger.Info("Practice session abandoned", "session_id", sessionID, "user_id", userID)

	if snapErr == nil && !snap.Completed {
		go s.publish(events.EventSessionAbandoned, events.SessionAbandonedEvent{
			SessionID: sessionID,
			UserID:    userID,
		})
	}
	return nil
}

func (s *sessionService) History(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.SessionResult, int64, error) {
	return s.repo.Result().GetByUser(ctx, userID, filters)
}

// Shutdown stops every live runner. Called on process exit; sessions are not
// recoverable afterwards.
func (s *sessionService) Shutdown() {
	s.mu.Lock()
	live := make([]*liveSession, 0, len(s.sessions))
	for _, l := range s.sessions {
		live = append(live, l)
	}
	s.sessions = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, l := range live {
		l.runner.Stop()
	}
}

// ===== EVENT SINK =====

// sinkFor builds the runner's event sink. It runs on the session goroutine,
// so reading the machine here is safe; anything slow (Kafka, Postgres) moves
// to its own goroutine.
func (s *sessionService) sinkFor(live *liveSession, m session.Machine) func([]session.Event) {
	return func(batch []session.Event) {
		for _, ev := range batch {
			switch ev.Type {
			case session.EventTimeWarning:
				snap := m.Snapshot()
				go s.publish(events.EventTimeWarning, events.TimeWarningEvent{
					SessionID: live.id,
					UserID:    live.userID,
					Section:   ev.Section,
					Remaining: snap.SectionRemaining,
				})
			case session.EventSectionCompleted:
				go s.publish(events.EventSectionCompleted, events.SectionCompletedEvent{
					SessionID: live.id,
					UserID:    live.userID,
					Section:   ev.Section,
					Reason:    ev.Reason,
				})
			case session.EventTaskSkipped:
				go s.publish(events.EventTaskSkipped, events.TaskSkippedEvent{
					SessionID: live.id,
					UserID:    live.userID,
					Reason:    ev.Reason,
				})
			default:
				s.logger.Debug("Session event",
					"session_id", live.id,
					"type", ev.Type,
					"section", ev.Section,
					"reason", ev.Reason)
			}
		}

		if m.Completed() {
			live.finalize.Do(func() {
				results := s.buildResults(live, m)
				go s.persistResults(live, results)
			})
		}
	}
}

// persistResults stores the terminal result row and announces completion.
func (s *sessionService) persistResults(live *liveSession, results *SessionResults) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	breakdown, err := json.Marshal(results.Sections)
	if err != nil {
		s.logger.Error("Failed to marshal result breakdown", "session_id", live.id, "error", err)
		breakdown = []byte("[]")
	}

	section := live.section
	if live.fullTest {
		section = models.SectionFullTest
	}
	record := &models.SessionResult{
		ID:          live.id,
		UserID:      live.userID,
		Section:     section,
		FullTest:    live.fullTest,
		Correct:     results.Correct,
		Total:       results.Total,
		Percentage:  results.Percentage,
		CLBLevel:    results.CLBLevel,
		Breakdown:   datatypes.JSON(breakdown),
		TimeSpent:   results.TimeSpent,
		CompletedAt: time.Now(),
	}
	if err := s.repo.Result().Create(ctx, record); err != nil {
		s.logger.Error("Failed to persist session result", "session_id", live.id, "error", err)
	}

	s.publish(events.EventSessionFinished, events.SessionFinishedEvent{
		SessionID:   live.id,
		UserID:      live.userID,
		FullTest:    live.fullTest,
		Percentage:  results.Percentage,
		CLBLevel:    results.CLBLevel,
		CompletedAt: record.CompletedAt,
	})
}

func (s *sessionService) publish(eventType events.EventType, data interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := &events.SessionEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "practice-service",
		Version:   "1.0",
		Data:      data,
	}
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event", "event_type", eventType, "error", err)
	}
}

// ===== SCORING =====

func (s *sessionService) buildResults(live *liveSession, m session.Machine) *SessionResults {
	results := &SessionResults{
		SessionID: live.id,
		FullTest:  live.fullTest,
	}

	var engines []*session.Engine
	switch machine := m.(type) {
	case *session.Engine:
		engines = []*session.Engine{machine}
	case *session.TestRun:
		engines = machine.SectionEngines()
	}

	for _, engine := range engines {
		sr := scoreSection(engine)
		results.Sections = append(results.Sections, sr)
		results.TimeSpent += engine.Elapsed()
		if sr.Choice != nil {
			results.Correct += sr.Choice.Correct
			results.Total += sr.Choice.Total
		}
	}
	results.Percentage = scoring.Percentage(results.Correct, results.Total)
	results.CLBLevel = scoring.CLBLevel(results.Percentage)
	return results
}

func scoreSection(engine *session.Engine) SectionResults {
	sec := engine.Section()
	responses := engine.Responses()
	sr := SectionResults{Section: sec.Kind}

	switch sec.Kind {
	case models.SectionListening, models.SectionReading:
		score := scoring.ScoreChoices(sec, responses)
		sr.Choice = &score
	case models.SectionWriting:
		for i := range sec.Parts {
			task := sec.Parts[i].Task
			if task == nil {
				continue
			}
			resp := responses[task.ID]
			score := scoring.ScoreWriting(*task, resp.Text)
			sr.Writing = append(sr.Writing, WritingResult{
				Score:    score,
				Feedback: writingFeedback(*task, score),
			})
		}
	case models.SectionSpeaking:
		for i := range sec.Parts {
			task := sec.Parts[i].Task
			if task == nil {
				continue
			}
			resp, ok := responses[task.ID]
			sr.Speaking = append(sr.Speaking, SpeakingOutcome{
				TaskID:      task.ID,
				Answered:    ok,
				RecordingID: resp.RecordingID,
			})
		}
	}
	return sr
}

// writingFeedback renders the heuristic flags as canned practice guidance.
// Fixed strings, not generated feedback.
func writingFeedback(task models.Task, score scoring.WritingScore) []string {
	var lines []string
	if score.WordCountInRange {
		lines = append(lines, "Your response length is within the expected range.")
	} else if task.WordCountMin > 0 && score.WordCount < task.WordCountMin {
		lines = append(lines, fmt.Sprintf("Aim for at least %d words; you wrote %d.", task.WordCountMin, score.WordCount))
	} else if task.WordCountMax > 0 && score.WordCount > task.WordCountMax {
		lines = append(lines, fmt.Sprintf("Keep your response under %d words; you wrote %d.", task.WordCountMax, score.WordCount))
	}
	if score.Substantial {
		lines = append(lines, "Your response develops the topic with substantial content.")
	} else {
		lines = append(lines, "Develop your ideas further; the response is too short to assess fully.")
	}
	if score.SentenceVariety {
		lines = append(lines, "Good use of multiple sentences.")
	} else {
		lines = append(lines, "Use several complete sentences to structure your answer.")
	}
	return lines
}

// ===== HELPERS =====

func (s *sessionService) owned(sessionID, userID string) (*liveSession, error) {
	s.mu.RLock()
	live, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if live.userID != userID {
		return nil, ErrSessionAccessDenied
	}
	return live, nil
}

func (s *sessionService) view(live *liveSession) (*SessionView, error) {
	snap, err := live.runner.Snapshot()
	if err != nil {
		return nil, err
	}
	return &SessionView{
		SessionID: live.id,
		FullTest:  live.fullTest,
		StartedAt: live.startedAt,
		State:     snap,
	}, nil
}
