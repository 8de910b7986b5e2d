package session

import (
	"errors"

	"github.com/celprep/practice-service/internal/models"
)

type Phase string

const (
	// PhaseInProgress is the single answering phase of question parts
	// (Listening, Reading).
	PhaseInProgress Phase = "in_progress"

	// PhasePreparation and PhaseAnswering are the task phases (Writing,
	// Speaking). PhaseTaskComplete holds between a finished task and the
	// user-driven "Next Task" transition.
	PhasePreparation  Phase = "preparation"
	PhaseAnswering    Phase = "answering"
	PhaseTaskComplete Phase = "task_complete"

	// PhaseCompleted is terminal for the section.
	PhaseCompleted Phase = "completed"
)

type RecordingState string

const (
	RecordingIdle   RecordingState = "idle"
	RecordingActive RecordingState = "active"
	RecordingDone   RecordingState = "done"
)

// MicPolicy decides what happens when the browser reports a denied
// microphone permission during a speaking task.
type MicPolicy string

const (
	// MicDeniedRetry holds the task in preparation and lets the client
	// re-request permission.
	MicDeniedRetry MicPolicy = "retry"

	// MicDeniedSkip completes the task with no response (zero score).
	MicDeniedSkip MicPolicy = "skip"
)

type micState int

const (
	micUnknown micState = iota
	micGranted
	micDenied
)

type EventType string

const (
	EventTimeWarning       EventType = "time_warning"
	EventAutoAdvanced      EventType = "auto_advanced"
	EventSectionCompleted  EventType = "section_completed"
	EventMicrophoneBlocked EventType = "microphone_blocked"
	EventTaskSkipped       EventType = "task_skipped"
)

// Event is emitted by the engine for the runner to act on (publishing,
// logging). Events never carry engine state beyond identifiers.
type Event struct {
	Type    EventType          `json:"type"`
	Section models.SectionKind `json:"section"`
	Reason  string             `json:"reason,omitempty"`
}

// Completion reasons recorded on the terminal snapshot.
const (
	ReasonFinished       = "finished"
	ReasonSectionTimeout = "section_timeout"
)

var (
	ErrSessionCompleted     = errors.New("session already completed")
	ErrConfirmationRequired = errors.New("current question is unanswered - confirmation required to advance")
	ErrRetreatNotAllowed    = errors.New("cannot navigate back from here")
	ErrTaskInProgress       = errors.New("task must be completed before advancing")
	ErrResponseLocked       = errors.New("response is read-only after advancing past it")
	ErrItemNotActive        = errors.New("item is not the active item")
	ErrNotAnswering         = errors.New("task is not in its answering phase")
	ErrMicrophoneDenied     = errors.New("microphone permission denied")
	ErrNotRecording         = errors.New("no recording in progress")
)

// Snapshot is the render-ready view of a session handed to collaborators
// (progress bars, timers, badges).
type Snapshot struct {
	Section          models.SectionKind `json:"section"`
	Phase            Phase              `json:"phase"`
	PartIndex        int                `json:"part_index"`
	ItemIndex        int                `json:"item_index"`
	PartID           string             `json:"part_id"`
	PartTitle        string             `json:"part_title"`
	MediaURL         *string            `json:"media_url,omitempty"`
	ActiveItemID     string             `json:"active_item_id"`
	PartRemaining    int                `json:"part_remaining"`
	SectionRemaining int                `json:"section_remaining"`
	FurthestReached  int                `json:"furthest_reached"`
	Answered         int                `json:"answered"`
	TotalItems       int                `json:"total_items"`
	Recording        RecordingState     `json:"recording"`
	MicrophoneDenied bool               `json:"microphone_denied"`
	Completed        bool               `json:"completed"`
	CompleteReason   string             `json:"complete_reason,omitempty"`

	// Complete-test wrapper fields, zero for single-section sessions.
	TestPhase    TestPhase `json:"test_phase,omitempty"`
	SectionIndex int       `json:"section_index,omitempty"`
	SectionCount int       `json:"section_count,omitempty"`
}

// Engine is the per-section timed assessment state machine. It is strictly
// single-threaded: every mutation happens inside one method call, and the
// Runner serializes calls through a single queue so that a racing clock
// expiry and user action resolve as "first processed wins, second is a
// no-op".
type Engine struct {
	section models.Section

	phase    Phase
	partIdx  int
	itemIdx  int
	furthest int // high-water ordinal, never decreases

	sectionClock *Clock
	partClock    *Clock
	elapsed      int
	warned       bool

	responses *ResponseStore

	recording RecordingState
	mic       micState
	micPolicy MicPolicy
	// prepHeld marks a preparation budget that expired while the microphone
	// was denied under the retry policy; granting permission later releases
	// the held transition.
	prepHeld bool

	completed      bool
	completeReason string
}

// NewEngine starts a session over the given section content. The section is
// treated as immutable for the lifetime of the engine.
func NewEngine(section models.Section, micPolicy MicPolicy) *Engine {
	if micPolicy == "" {
		micPolicy = MicDeniedRetry
	}
	e := &Engine{
		section:   section,
		responses: NewResponseStore(),
		micPolicy: micPolicy,
		recording: RecordingIdle,
	}
	if section.TimeLimit > 0 {
		e.sectionClock = NewClock(section.TimeLimit)
	}
	e.enterPart(0)
	return e
}

// Section returns the immutable content the session runs over.
func (e *Engine) Section() models.Section {
	return e.section
}

// Responses returns a copy of the recorded answers keyed by item ID.
func (e *Engine) Responses() map[string]Response {
	return e.responses.All()
}

// Completed reports whether the section reached its terminal phase.
func (e *Engine) Completed() bool {
	return e.completed
}

// ===== CLOCK =====

// Tick advances both clocks by one second and applies any expiry-triggered
// transitions. The section clock wins when both expire on the same tick: the
// whole section completes regardless of part-clock state.
func (e *Engine) Tick() []Event {
	if e.completed {
		return nil
	}
	var events []Event

	e.elapsed++
	if e.sectionClock.Tick() {
		e.partClock.Stop()
		e.complete(ReasonSectionTimeout)
		return append(events, Event{Type: EventSectionCompleted, Section: e.section.Kind, Reason: ReasonSectionTimeout})
	}
	if e.section.TimeWarning > 0 && !e.warned && e.sectionClock.Running() &&
		e.sectionClock.Remaining() <= e.section.TimeWarning {
		e.warned = true
		events = append(events, Event{Type: EventTimeWarning, Section: e.section.Kind})
	}

	if e.partClock.Tick() {
		events = append(events, e.onPartExpired()...)
	}
	return events
}

// Elapsed returns the seconds the session has been running, counted whether
// or not the section carries its own clock. For clocked sections it conserves
// the configured limit together with SectionRemaining to tick granularity.
func (e *Engine) Elapsed() int {
	return e.elapsed
}

func (e *Engine) onPartExpired() []Event {
	part := e.currentPart()
	switch {
	case !part.IsTask():
		// Per-part question budget exhausted: skip the rest of the part.
		return e.advancePart()
	case e.phase == PhasePreparation:
		if e.section.Kind == models.SectionSpeaking && e.mic == micDenied {
			if e.micPolicy == MicDeniedSkip {
				ev := e.completeTask()
				return append([]Event{{Type: EventTaskSkipped, Section: e.section.Kind, Reason: "microphone_denied"}}, ev...)
			}
			e.prepHeld = true
			return []Event{{Type: EventMicrophoneBlocked, Section: e.section.Kind}}
		}
		e.enterAnswering()
		return []Event{{Type: EventAutoAdvanced, Section: e.section.Kind, Reason: "preparation_expired"}}
	case e.phase == PhaseAnswering:
		events := append([]Event{{Type: EventAutoAdvanced, Section: e.section.Kind, Reason: "response_time_expired"}}, e.completeTask()...)
		// Only the speaking recording sub-machine waits for an explicit
		// Next Task after its time runs out; writing moves straight on.
		if e.section.Kind != models.SectionSpeaking && !e.completed {
			events = append(events, e.advancePart()...)
		}
		return events
	}
	return nil
}

// ===== PHASE TRANSITIONS =====

// Advance moves to the next item on explicit user action. In the Listening
// flow an unanswered, non-final question demands confirmed=true first; the
// gate is a UI confirmation, not data integrity - once confirmed the
// transition proceeds unanswered.
func (e *Engine) Advance(confirmed bool) ([]Event, error) {
	if e.completed {
		return nil, ErrSessionCompleted
	}
	part := e.currentPart()

	if part.IsTask() {
		switch e.phase {
		case PhasePreparation:
			if e.section.Kind == models.SectionSpeaking && e.mic == micDenied && e.micPolicy == MicDeniedRetry {
				return nil, ErrMicrophoneDenied
			}
			e.enterAnswering()
			return nil, nil
		case PhaseAnswering:
			if e.section.Kind == models.SectionSpeaking {
				// Next Task stays disabled until the recording sub-machine
				// completes.
				return nil, ErrTaskInProgress
			}
			events := e.completeTask()
			if !e.completed {
				events = append(events, e.advancePart()...)
			}
			return events, nil
		case PhaseTaskComplete:
			return e.advancePart(), nil
		}
		return nil, nil
	}

	if e.confirmGuard() && !confirmed && !e.responses.Answered(e.activeItemID()) && !e.isLastItem() {
		return nil, ErrConfirmationRequired
	}

	if e.itemIdx+1 < len(part.Questions) {
		e.itemIdx++
		e.bumpFurthest()
		return nil, nil
	}
	return e.advancePart(), nil
}

// Retreat navigates back one question. Only the Listening flow allows it,
// and only into already-visited territory; the furthest mark is never
// mutated.
func (e *Engine) Retreat() error {
	if e.completed {
		return ErrSessionCompleted
	}
	if !e.allowBack() || e.currentPart().IsTask() {
		return ErrRetreatNotAllowed
	}
	if e.itemIdx > 0 {
		e.itemIdx--
		return nil
	}
	if e.partIdx == 0 {
		return ErrRetreatNotAllowed
	}
	e.partIdx--
	e.itemIdx = e.currentPart().ItemCount() - 1
	return nil
}

func (e *Engine) advancePart() []Event {
	if e.partIdx+1 < len(e.section.Parts) {
		e.enterPart(e.partIdx + 1)
		return nil
	}
	e.complete(ReasonFinished)
	return []Event{{Type: EventSectionCompleted, Section: e.section.Kind, Reason: ReasonFinished}}
}

// enterPart activates a part, resetting the part clock and any per-part
// media or recording state.
func (e *Engine) enterPart(i int) {
	e.partIdx = i
	e.itemIdx = 0
	e.recording = RecordingIdle
	e.prepHeld = false
	e.bumpFurthest()

	part := e.currentPart()
	if part.IsTask() {
		if part.Task.PrepTime > 0 {
			e.phase = PhasePreparation
			e.partClock = NewClock(part.Task.PrepTime)
		} else {
			e.enterAnswering()
		}
		return
	}
	e.phase = PhaseInProgress
	e.partClock = NewClock(part.TimeLimit)
}

func (e *Engine) enterAnswering() {
	task := e.currentPart().Task
	e.phase = PhaseAnswering
	e.prepHeld = false
	e.partClock = NewClock(task.ResponseTime)
	if e.section.Kind == models.SectionSpeaking {
		e.recording = RecordingActive
	}
}

func (e *Engine) completeTask() []Event {
	e.partClock.Stop()
	if e.recording == RecordingActive {
		e.recording = RecordingDone
	}
	e.phase = PhaseTaskComplete
	// Speaking has no section clock; a finished final task ends the section
	// without waiting for a Next that has nowhere to go.
	if e.partIdx+1 >= len(e.section.Parts) {
		return e.advancePart()
	}
	return nil
}

func (e *Engine) complete(reason string) {
	e.completed = true
	e.completeReason = reason
	e.phase = PhaseCompleted
	e.partClock.Stop()
	if e.sectionClock != nil {
		e.sectionClock.Stop()
	}
}

// ===== RESPONSES =====

// RecordAnswer stores the response for the active item. Items behind the
// furthest-reached mark are read-only in the Listening flow.
func (e *Engine) RecordAnswer(itemID string, resp Response) error {
	if e.completed {
		return ErrSessionCompleted
	}
	if e.allowBack() && e.ordinal(e.partIdx, e.itemIdx) < e.furthest {
		return ErrResponseLocked
	}
	part := e.currentPart()
	if part.IsTask() {
		if e.phase != PhaseAnswering {
			return ErrNotAnswering
		}
		if itemID != part.Task.ID {
			return ErrItemNotActive
		}
	} else if itemID != e.activeItemID() {
		return ErrItemNotActive
	}
	e.responses.Record(itemID, resp)
	return nil
}

// StopRecording ends the active speaking recording, stores the recorded
// audio handle and completes the task.
func (e *Engine) StopRecording(recordingID string) ([]Event, error) {
	if e.completed {
		return nil, ErrSessionCompleted
	}
	if e.recording != RecordingActive || e.phase != PhaseAnswering {
		return nil, ErrNotRecording
	}
	e.responses.Record(e.currentPart().Task.ID, Response{Kind: ResponseRecording, RecordingID: recordingID})
	return e.completeTask(), nil
}

// SetMicrophonePermission reports the asynchronous permission outcome. A
// grant releases a preparation phase held by an earlier denial. Denial
// behavior follows the configured MicPolicy.
func (e *Engine) SetMicrophonePermission(granted bool) []Event {
	if e.completed || e.section.Kind != models.SectionSpeaking {
		return nil
	}
	if granted {
		e.mic = micGranted
		if e.prepHeld {
			e.enterAnswering()
			return []Event{{Type: EventAutoAdvanced, Section: e.section.Kind, Reason: "microphone_granted"}}
		}
		return nil
	}
	e.mic = micDenied
	if e.micPolicy == MicDeniedSkip && (e.prepHeld || e.phase == PhaseAnswering) {
		ev := e.completeTask()
		return append([]Event{{Type: EventTaskSkipped, Section: e.section.Kind, Reason: "microphone_denied"}}, ev...)
	}
	return nil
}

// ===== SNAPSHOT =====

func (e *Engine) Snapshot() Snapshot {
	part := e.currentPart()
	snap := Snapshot{
		Section:          e.section.Kind,
		Phase:            e.phase,
		PartIndex:        e.partIdx,
		ItemIndex:        e.itemIdx,
		PartID:           part.ID,
		PartTitle:        part.Title,
		MediaURL:         part.MediaURL,
		ActiveItemID:     e.activeItemID(),
		PartRemaining:    e.partClock.Remaining(),
		SectionRemaining: e.sectionClock.Remaining(),
		FurthestReached:  e.furthest,
		Answered:         e.responses.Len(),
		TotalItems:       e.totalItems(),
		Recording:        e.recording,
		MicrophoneDenied: e.mic == micDenied,
		Completed:        e.completed,
		CompleteReason:   e.completeReason,
	}
	return snap
}

// ===== HELPERS =====

func (e *Engine) currentPart() *models.ContentPart {
	return &e.section.Parts[e.partIdx]
}

func (e *Engine) activeItemID() string {
	part := e.currentPart()
	if part.IsTask() {
		return part.Task.ID
	}
	if e.itemIdx < len(part.Questions) {
		return part.Questions[e.itemIdx].ID
	}
	return ""
}

func (e *Engine) allowBack() bool {
	return e.section.Kind == models.SectionListening
}

func (e *Engine) confirmGuard() bool {
	return e.section.Kind == models.SectionListening
}

// ordinal flattens a (part, item) pair into a section-wide item index.
func (e *Engine) ordinal(partIdx, itemIdx int) int {
	n := 0
	for i := 0; i < partIdx; i++ {
		n += e.section.Parts[i].ItemCount()
	}
	return n + itemIdx
}

func (e *Engine) totalItems() int {
	n := 0
	for i := range e.section.Parts {
		n += e.section.Parts[i].ItemCount()
	}
	return n
}

func (e *Engine) isLastItem() bool {
	return e.ordinal(e.partIdx, e.itemIdx) == e.totalItems()-1
}

func (e *Engine) bumpFurthest() {
	if ord := e.ordinal(e.partIdx, e.itemIdx); ord > e.furthest {
		e.furthest = ord
	}
}
