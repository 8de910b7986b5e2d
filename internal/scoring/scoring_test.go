package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celprep/practice-service/internal/catalog"
	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/session"
)

func listeningContent(t *testing.T) models.Section {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	sec, err := cat.Section(models.SectionListening)
	require.NoError(t, err)
	return sec
}

func correctResponses(sec models.Section) map[string]session.Response {
	responses := make(map[string]session.Response)
	for pi := range sec.Parts {
		for _, q := range sec.Parts[pi].Questions {
			responses[q.ID] = session.Response{Kind: session.ResponseChoice, OptionIndex: q.CorrectIndex}
		}
	}
	return responses
}

func TestScoreChoices_NoAnswers(t *testing.T) {
	sec := listeningContent(t)

	score := ScoreChoices(sec, nil)

	assert.Equal(t, 0, score.Correct)
	assert.Equal(t, 9, score.Total)
	assert.Equal(t, 0, score.Percentage)
	assert.Equal(t, 5, score.CLBLevel)
	require.Len(t, score.Items, 9)
	for _, item := range score.Items {
		assert.False(t, item.Answered)
		assert.Equal(t, -1, item.SelectedIndex)
	}
}

func TestScoreChoices_AllCorrect(t *testing.T) {
	sec := listeningContent(t)

	score := ScoreChoices(sec, correctResponses(sec))

	assert.Equal(t, 9, score.Correct)
	assert.Equal(t, 9, score.Total)
	assert.Equal(t, 100, score.Percentage)
	assert.Equal(t, 9, score.CLBLevel)
}

func TestScoreChoices_PartialAndWrong(t *testing.T) {
	sec := listeningContent(t)
	responses := correctResponses(sec)

	// Flip three answers to a wrong option.
	flipped := 0
	for id, resp := range responses {
		if flipped == 3 {
			break
		}
		resp.OptionIndex = (resp.OptionIndex + 1) % 4
		responses[id] = resp
		flipped++
	}

	score := ScoreChoices(sec, responses)
	assert.Equal(t, 6, score.Correct)
	assert.Equal(t, 67, score.Percentage)
	assert.Equal(t, 6, score.CLBLevel)
}

func TestScoreChoices_Deterministic(t *testing.T) {
	sec := listeningContent(t)
	responses := correctResponses(sec)

	first := ScoreChoices(sec, responses)
	second := ScoreChoices(sec, responses)
	assert.Equal(t, first, second, "same inputs must always score identically")
}

func TestScoreChoices_IgnoresNonChoiceResponses(t *testing.T) {
	sec := listeningContent(t)
	responses := map[string]session.Response{
		sec.Parts[0].Questions[0].ID: {Kind: session.ResponseText, Text: "not a choice"},
	}

	score := ScoreChoices(sec, responses)
	assert.Equal(t, 0, score.Correct)
	assert.False(t, score.Items[0].Answered)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 0, Percentage(0, 9))
	assert.Equal(t, 100, Percentage(9, 9))
	assert.Equal(t, 67, Percentage(6, 9))
	assert.Equal(t, 33, Percentage(3, 9))
}

func TestCLBLevel_Buckets(t *testing.T) {
	cases := []struct {
		percentage int
		level      int
	}{
		{100, 9}, {90, 9},
		{89, 8}, {80, 8},
		{79, 7}, {70, 7},
		{69, 6}, {60, 6},
		{59, 5}, {1, 5}, {0, 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, CLBLevel(tc.percentage), "percentage %d", tc.percentage)
	}
}

// ===== WRITING HEURISTIC =====

func writingTask() models.Task {
	return models.Task{
		ID:           "task-1",
		ResponseTime: 60,
		WordCountMin: 150,
		WordCountMax: 200,
		MaxScore:     6,
	}
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestScoreWriting_UnderMinimumStillEarnsOtherPoints(t *testing.T) {
	// 140 words in three sentences: misses the 150-word floor but keeps the
	// substance and variety awards.
	text := words(50) + ". " + words(50) + ". " + words(40) + "."
	score := ScoreWriting(writingTask(), text)

	assert.Equal(t, 140, score.WordCount)
	assert.False(t, score.WordCountInRange)
	assert.True(t, score.Substantial)
	assert.True(t, score.SentenceVariety)
	assert.Equal(t, 4, score.Points)
	assert.Equal(t, 6, score.MaxPoints)
}

func TestScoreWriting_FullMarksCappedAtTaskMax(t *testing.T) {
	text := words(60) + ". " + words(60) + ". " + words(60) + "."
	score := ScoreWriting(writingTask(), text)

	assert.Equal(t, 180, score.WordCount)
	assert.True(t, score.WordCountInRange)
	assert.True(t, score.Substantial)
	assert.True(t, score.SentenceVariety)
	assert.Equal(t, 6, score.Points)
}

func TestScoreWriting_EmptyResponse(t *testing.T) {
	score := ScoreWriting(writingTask(), "")
	assert.Equal(t, 0, score.WordCount)
	assert.Equal(t, 0, score.SentenceCount)
	assert.Equal(t, 0, score.Points)
}

func TestScoreWriting_ShortSingleSentence(t *testing.T) {
	score := ScoreWriting(writingTask(), "Too short.")
	assert.Equal(t, 2, score.WordCount)
	assert.Equal(t, 1, score.SentenceCount)
	assert.False(t, score.WordCountInRange)
	assert.False(t, score.Substantial)
	assert.False(t, score.SentenceVariety)
	assert.Equal(t, 0, score.Points)
}

func TestScoreWriting_NoBoundsTreatsAnyTextAsInRange(t *testing.T) {
	task := models.Task{ID: "t", ResponseTime: 60}
	score := ScoreWriting(task, "One. Two three four, and a few more words here. Three!")

	assert.True(t, score.WordCountInRange)
	assert.Equal(t, defaultWritingMaxScore, score.MaxPoints)
}

func TestScoreWriting_Deterministic(t *testing.T) {
	text := words(160) + ". Done. Yes."
	assert.Equal(t, ScoreWriting(writingTask(), text), ScoreWriting(writingTask(), text))
}

func TestCountSentences(t *testing.T) {
	assert.Equal(t, 0, countSentences(""))
	assert.Equal(t, 1, countSentences("No terminator"))
	assert.Equal(t, 2, countSentences("One. Two!"))
	assert.Equal(t, 2, countSentences("Dots... still two? "))
}
