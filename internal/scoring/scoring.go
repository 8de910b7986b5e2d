// Package scoring computes practice results from a section's content and a
// learner's responses.
//
// Choice scoring (Listening, Reading) is a straight correct-count. Writing
// scoring is a HEURISTIC MOCK: fixed points for word count, length and
// sentence variety, capped per task. It approximates feedback for practice
// purposes and is not a real assessment engine; no speech or text model is
// involved.
package scoring

import (
	"math"
	"strings"

	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/session"
)

// CLB level buckets mapped from the correct-answer percentage.
const (
	clb9Threshold = 90
	clb8Threshold = 80
	clb7Threshold = 70
	clb6Threshold = 60
	clbFloor      = 5
)

// Writing heuristic point values.
const (
	pointsWordCountInRange   = 2
	pointsSubstantialContent = 2
	pointsSentenceVariety    = 2

	substantialContentMinChars = 50
	sentenceVarietyMinCount    = 3

	defaultWritingMaxScore = 6
)

// ItemResult is the per-question breakdown entry of a choice section.
type ItemResult struct {
	ItemID        string `json:"item_id"`
	Answered      bool   `json:"answered"`
	SelectedIndex int    `json:"selected_index"`
	CorrectIndex  int    `json:"correct_index"`
	Correct       bool   `json:"correct"`
}

// SectionScore is the terminal result of a choice section.
type SectionScore struct {
	Section    models.SectionKind `json:"section"`
	Correct    int                `json:"correct"`
	Total      int                `json:"total"`
	Percentage int                `json:"percentage"`
	CLBLevel   int                `json:"clb_level"`
	Items      []ItemResult       `json:"items"`
}

// WritingScore is the heuristic point award for one writing task.
type WritingScore struct {
	TaskID           string `json:"task_id"`
	WordCount        int    `json:"word_count"`
	SentenceCount    int    `json:"sentence_count"`
	WordCountInRange bool   `json:"word_count_in_range"`
	Substantial      bool   `json:"substantial"`
	SentenceVariety  bool   `json:"sentence_variety"`
	Points           int    `json:"points"`
	MaxPoints        int    `json:"max_points"`
}

// ScoreChoices grades a Listening or Reading section. It is deterministic
// and idempotent: the same catalog and responses always yield the same
// result.
func ScoreChoices(sec models.Section, responses map[string]session.Response) SectionScore {
	score := SectionScore{Section: sec.Kind}
	for pi := range sec.Parts {
		for qi := range sec.Parts[pi].Questions {
			q := &sec.Parts[pi].Questions[qi]
			item := ItemResult{
				ItemID:        q.ID,
				SelectedIndex: -1,
				CorrectIndex:  q.CorrectIndex,
			}
			if resp, ok := responses[q.ID]; ok && resp.Kind == session.ResponseChoice {
				item.Answered = true
				item.SelectedIndex = resp.OptionIndex
				item.Correct = resp.OptionIndex == q.CorrectIndex
			}
			if item.Correct {
				score.Correct++
			}
			score.Total++
			score.Items = append(score.Items, item)
		}
	}
	score.Percentage = Percentage(score.Correct, score.Total)
	score.CLBLevel = CLBLevel(score.Percentage)
	return score
}

// Percentage rounds 100*correct/total to the nearest integer. A section with
// no questions scores zero.
func Percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// CLBLevel maps a percentage onto the mock CLB bucket.
func CLBLevel(percentage int) int {
	switch {
	case percentage >= clb9Threshold:
		return 9
	case percentage >= clb8Threshold:
		return 8
	case percentage >= clb7Threshold:
		return 7
	case percentage >= clb6Threshold:
		return 6
	default:
		return clbFloor
	}
}

// ScoreWriting awards the heuristic points for one writing task response.
// Word-count-in-range, substantial length and sentence variety each earn a
// fixed award, capped at the task maximum. This is mock feedback, not
// assessment.
func ScoreWriting(task models.Task, text string) WritingScore {
	maxPoints := task.MaxScore
	if maxPoints <= 0 {
		maxPoints = defaultWritingMaxScore
	}
	ws := WritingScore{
		TaskID:        task.ID,
		WordCount:     countWords(text),
		SentenceCount: countSentences(text),
		MaxPoints:     maxPoints,
	}

	if task.WordCountMin > 0 || task.WordCountMax > 0 {
		ws.WordCountInRange = ws.WordCount >= task.WordCountMin &&
			(task.WordCountMax == 0 || ws.WordCount <= task.WordCountMax)
	} else {
		ws.WordCountInRange = ws.WordCount > 0
	}
	ws.Substantial = len(strings.TrimSpace(text)) > substantialContentMinChars
	ws.SentenceVariety = ws.SentenceCount >= sentenceVarietyMinCount

	if ws.WordCountInRange {
		ws.Points += pointsWordCountInRange
	}
	if ws.Substantial {
		ws.Points += pointsSubstantialContent
	}
	if ws.SentenceVariety {
		ws.Points += pointsSentenceVariety
	}
	if ws.Points > maxPoints {
		ws.Points = maxPoints
	}
	return ws
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func countSentences(text string) int {
	n := 0
	inSentence := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if inSentence {
				n++
				inSentence = false
			}
		case ' ', '\t', '\n', '\r':
		default:
			inSentence = true
		}
	}
	if inSentence {
		n++
	}
	return n
}
