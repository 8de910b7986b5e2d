package models

type SectionKind string

const (
	SectionListening SectionKind = "listening"
	SectionReading   SectionKind = "reading"
	SectionWriting   SectionKind = "writing"
	SectionSpeaking  SectionKind = "speaking"

	// SectionFullTest labels the persisted result of a complete four-section
	// test. It is not playable content; the catalog never contains it.
	SectionFullTest SectionKind = "full_test"
)

// SectionOrder is the fixed sequence the complete-test wrapper walks through.
var SectionOrder = []SectionKind{SectionListening, SectionReading, SectionWriting, SectionSpeaking}

// Section is the content catalog for one exam section. Immutable for the
// duration of a session.
type Section struct {
	Kind  SectionKind `json:"kind" validate:"required,section_kind"`
	Title string      `json:"title" validate:"required,min=1,max=200"`

	// TimeLimit is the overall section budget in seconds. 0 means the section
	// has no section-level clock (Listening and Speaking pace per part/task).
	TimeLimit int `json:"time_limit" validate:"min=0"`

	// TimeWarning is the remaining-seconds threshold at which a one-shot
	// warning event is emitted. 0 disables the warning.
	TimeWarning int `json:"time_warning" validate:"min=0"`

	Parts []ContentPart `json:"parts" validate:"required,min=1,dive"`
}

// ContentPart is an ordered subdivision of a section. It carries either an
// ordered question list or a single free-response task, never both.
type ContentPart struct {
	ID       string  `json:"id" validate:"required"`
	Title    string  `json:"title" validate:"required,min=1,max=200"`
	MediaURL *string `json:"media_url,omitempty" validate:"omitempty,max=500"`

	// TimeLimit is the per-part budget in seconds. 0 means the part is paced
	// only by the section clock (or, for tasks, by the task's own budgets).
	TimeLimit int `json:"time_limit" validate:"min=0"`

	Questions []Question `json:"questions,omitempty" validate:"omitempty,dive"`
	Task      *Task      `json:"task,omitempty"`
}

// IsTask reports whether the part is a single free-response prompt rather
// than a question list.
func (p *ContentPart) IsTask() bool {
	return p.Task != nil
}

// ItemCount returns the number of answerable items in the part.
func (p *ContentPart) ItemCount() int {
	if p.IsTask() {
		return 1
	}
	return len(p.Questions)
}

type Question struct {
	ID           string   `json:"id" validate:"required"`
	Prompt       string   `json:"prompt" validate:"required"`
	Options      []string `json:"options" validate:"required,min=2"`
	CorrectIndex int      `json:"correct_index" validate:"min=0"`
	Explanation  *string  `json:"explanation,omitempty"`
}

// Task is a writing or speaking prompt with its own timing budgets.
type Task struct {
	ID           string `json:"id" validate:"required"`
	Prompt       string `json:"prompt" validate:"required"`
	Instructions string `json:"instructions"`

	PrepTime     int `json:"prep_time" validate:"min=0"`              // seconds
	ResponseTime int `json:"response_time" validate:"required,min=1"` // seconds

	// Word bounds apply to writing tasks only.
	WordCountMin int `json:"word_count_min" validate:"min=0"`
	WordCountMax int `json:"word_count_max" validate:"min=0,gtefield=WordCountMin"`

	// MaxScore caps the heuristic writing score for the task.
	MaxScore int `json:"max_score" validate:"min=0"`
}

// TotalQuestions counts the multiple-choice questions across all parts.
func (s *Section) TotalQuestions() int {
	total := 0
	for i := range s.Parts {
		total += len(s.Parts[i].Questions)
	}
	return total
}
