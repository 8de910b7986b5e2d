package session

import (
	"github.com/celprep/practice-service/internal/models"
)

type TestPhase string

const (
	TestNotStarted    TestPhase = "not_started"
	TestSectionActive TestPhase = "section_active"
	TestFinished      TestPhase = "finished"
)

// EventTestFinished fires once when the final section of a complete test
// completes.
const EventTestFinished EventType = "test_finished"

// TestRun sequences the four exam sections as one complete practice test:
// NotStarted -> SectionActive(Listening) -> ... -> SectionActive(Speaking)
// -> Finished. Completing the final section finishes the test; there is no
// fifth section to advance into.
type TestRun struct {
	sections  []models.Section
	micPolicy MicPolicy

	phase    TestPhase
	idx      int
	engine   *Engine
	finished []*Engine
}

// NewTestRun builds a complete test over the given sections in order. The
// run stays in NotStarted until the first Advance (the "Start Test" action);
// ticks are ignored until then.
func NewTestRun(sections []models.Section, micPolicy MicPolicy) *TestRun {
	return &TestRun{
		sections:  sections,
		micPolicy: micPolicy,
		phase:     TestNotStarted,
	}
}

// Completed reports whether the outer machine reached its terminal state.
func (t *TestRun) Completed() bool {
	return t.phase == TestFinished
}

// SectionEngines returns the engines of all completed sections in order,
// plus the active one if any. Used for scoring the full test.
func (t *TestRun) SectionEngines() []*Engine {
	engines := append([]*Engine{}, t.finished...)
	if t.engine != nil && t.phase == TestSectionActive {
		engines = append(engines, t.engine)
	}
	return engines
}

func (t *TestRun) Tick() []Event {
	if t.phase != TestSectionActive {
		return nil
	}
	return t.afterInner(t.engine.Tick())
}

func (t *TestRun) Advance(confirmed bool) ([]Event, error) {
	switch t.phase {
	case TestNotStarted:
		t.activateSection(0)
		return nil, nil
	case TestFinished:
		return nil, ErrSessionCompleted
	}
	events, err := t.engine.Advance(confirmed)
	if err != nil {
		return nil, err
	}
	return t.afterInner(events), nil
}

func (t *TestRun) Retreat() error {
	if t.phase != TestSectionActive {
		return ErrSessionCompleted
	}
	return t.engine.Retreat()
}

func (t *TestRun) RecordAnswer(itemID string, resp Response) error {
	if t.phase != TestSectionActive {
		return ErrSessionCompleted
	}
	return t.engine.RecordAnswer(itemID, resp)
}

func (t *TestRun) StopRecording(recordingID string) ([]Event, error) {
	if t.phase != TestSectionActive {
		return nil, ErrSessionCompleted
	}
	events, err := t.engine.StopRecording(recordingID)
	if err != nil {
		return nil, err
	}
	return t.afterInner(events), nil
}

func (t *TestRun) SetMicrophonePermission(granted bool) []Event {
	if t.phase != TestSectionActive {
		return nil
	}
	return t.afterInner(t.engine.SetMicrophonePermission(granted))
}

func (t *TestRun) Snapshot() Snapshot {
	var snap Snapshot
	if t.engine != nil {
		snap = t.engine.Snapshot()
	}
	snap.TestPhase = t.phase
	snap.SectionIndex = t.idx
	snap.SectionCount = len(t.sections)
	if t.phase == TestFinished {
		snap.Completed = true
	}
	return snap
}

// afterInner promotes inner section completion into the outer transition:
// the next section activates immediately, or the run finishes after the
// last one.
func (t *TestRun) afterInner(events []Event) []Event {
	if t.engine == nil || !t.engine.Completed() {
		return events
	}
	t.finished = append(t.finished, t.engine)
	if t.idx+1 < len(t.sections) {
		t.activateSection(t.idx + 1)
		return events
	}
	t.engine = nil
	t.phase = TestFinished
	return append(events, Event{Type: EventTestFinished})
}

func (t *TestRun) activateSection(i int) {
	t.idx = i
	t.engine = NewEngine(t.sections[i], t.micPolicy)
	t.phase = TestSectionActive
}
