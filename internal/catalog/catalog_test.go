package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celprep/practice-service/internal/models"
)

func validSection() models.Section {
	return models.Section{
		Kind:  models.SectionReading,
		Title: "Reading",
		Parts: []models.ContentPart{{
			ID:    "p1",
			Title: "Part 1",
			Questions: []models.Question{{
				ID:           "q1",
				Prompt:       "prompt",
				Options:      []string{"a", "b"},
				CorrectIndex: 1,
			}},
		}},
	}
}

func TestDefault_BuildsValidCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	sections, err := cat.FullTest()
	require.NoError(t, err)
	require.Len(t, sections, 4)
	for i, kind := range models.SectionOrder {
		assert.Equal(t, kind, sections[i].Kind, "complete test must follow exam order")
	}

	listening, err := cat.Section(models.SectionListening)
	require.NoError(t, err)
	assert.Equal(t, 9, listening.TotalQuestions())
}

func TestNew_RejectsDuplicateSections(t *testing.T) {
	_, err := New(validSection(), validSection())
	assert.ErrorContains(t, err, "duplicate section")
}

func TestNew_RejectsEmptySection(t *testing.T) {
	sec := validSection()
	sec.Parts = nil
	_, err := New(sec)
	assert.ErrorContains(t, err, "no parts")
}

func TestNew_RejectsPartWithQuestionsAndTask(t *testing.T) {
	sec := validSection()
	sec.Parts[0].Task = &models.Task{ID: "t1", Prompt: "p", ResponseTime: 60}
	_, err := New(sec)
	assert.ErrorContains(t, err, "exactly one of questions or task")
}

func TestNew_RejectsPartWithNeither(t *testing.T) {
	sec := validSection()
	sec.Parts[0].Questions = nil
	_, err := New(sec)
	assert.ErrorContains(t, err, "exactly one of questions or task")
}

func TestNew_RejectsDuplicateItemIDs(t *testing.T) {
	sec := validSection()
	sec.Parts = append(sec.Parts, models.ContentPart{
		ID:    "p2",
		Title: "Part 2",
		Questions: []models.Question{{
			ID:           "q1",
			Prompt:       "prompt",
			Options:      []string{"a", "b"},
			CorrectIndex: 0,
		}},
	})
	_, err := New(sec)
	assert.ErrorContains(t, err, "duplicate item id")
}

func TestNew_RejectsCorrectIndexOutOfRange(t *testing.T) {
	sec := validSection()
	sec.Parts[0].Questions[0].CorrectIndex = 2
	_, err := New(sec)
	assert.ErrorContains(t, err, "correct index out of range")
}

func TestNew_RejectsTaskWithoutResponseTime(t *testing.T) {
	sec := validSection()
	sec.Parts[0].Questions = nil
	sec.Parts[0].Task = &models.Task{ID: "t1", Prompt: "p"}
	_, err := New(sec)
	assert.ErrorContains(t, err, "response time")
}

func TestNew_RejectsInvertedWordBounds(t *testing.T) {
	sec := validSection()
	sec.Parts[0].Questions = nil
	sec.Parts[0].Task = &models.Task{
		ID:           "t1",
		Prompt:       "p",
		ResponseTime: 60,
		WordCountMin: 200,
		WordCountMax: 150,
	}
	_, err := New(sec)
	assert.ErrorContains(t, err, "word count bounds inverted")
}

func TestCatalog_SectionLookup(t *testing.T) {
	cat, err := New(validSection())
	require.NoError(t, err)

	_, err = cat.Section(models.SectionReading)
	assert.NoError(t, err)
	_, err = cat.Section(models.SectionWriting)
	assert.ErrorContains(t, err, "no content for section")
}

func TestCatalog_FullTestRequiresAllSections(t *testing.T) {
	cat, err := New(validSection())
	require.NoError(t, err)

	_, err = cat.FullTest()
	assert.ErrorContains(t, err, "complete test requires section")
}
