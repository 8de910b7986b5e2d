// Package catalog holds the read-only practice content a session runs over.
package catalog

import (
	"errors"
	"fmt"

	"github.com/celprep/practice-service/internal/models"
)

// Catalog is the set of section contents available to sessions. Immutable
// once built.
type Catalog struct {
	sections map[models.SectionKind]models.Section
}

// New validates the given sections and builds a catalog. Every section kind
// may appear at most once.
func New(sections ...models.Section) (*Catalog, error) {
	c := &Catalog{sections: make(map[models.SectionKind]models.Section, len(sections))}
	for _, sec := range sections {
		if _, dup := c.sections[sec.Kind]; dup {
			return nil, fmt.Errorf("duplicate section: %s", sec.Kind)
		}
		if err := validateSection(&sec); err != nil {
			return nil, fmt.Errorf("section %s: %w", sec.Kind, err)
		}
		c.sections[sec.Kind] = sec
	}
	return c, nil
}

// Section returns the content for one section kind.
func (c *Catalog) Section(kind models.SectionKind) (models.Section, error) {
	sec, ok := c.sections[kind]
	if !ok {
		return models.Section{}, fmt.Errorf("no content for section %s", kind)
	}
	return sec, nil
}

// FullTest returns the sections of a complete test in exam order. All four
// sections must be present.
func (c *Catalog) FullTest() ([]models.Section, error) {
	out := make([]models.Section, 0, len(models.SectionOrder))
	for _, kind := range models.SectionOrder {
		sec, ok := c.sections[kind]
		if !ok {
			return nil, fmt.Errorf("complete test requires section %s", kind)
		}
		out = append(out, sec)
	}
	return out, nil
}

func validateSection(sec *models.Section) error {
	if len(sec.Parts) == 0 {
		return errors.New("section has no parts")
	}
	partIDs := map[string]bool{}
	itemIDs := map[string]bool{}
	for i := range sec.Parts {
		part := &sec.Parts[i]
		if part.ID == "" {
			return fmt.Errorf("part %d: id is required", i)
		}
		if partIDs[part.ID] {
			return fmt.Errorf("duplicate part id: %s", part.ID)
		}
		partIDs[part.ID] = true
		if part.TimeLimit < 0 {
			return fmt.Errorf("part %s: negative time limit", part.ID)
		}

		hasQuestions := len(part.Questions) > 0
		if hasQuestions == part.IsTask() {
			return fmt.Errorf("part %s: exactly one of questions or task is required", part.ID)
		}

		if part.IsTask() {
			task := part.Task
			if task.ID == "" {
				return fmt.Errorf("part %s: task id is required", part.ID)
			}
			if itemIDs[task.ID] {
				return fmt.Errorf("duplicate item id: %s", task.ID)
			}
			itemIDs[task.ID] = true
			if task.ResponseTime <= 0 {
				return fmt.Errorf("task %s: response time is required", task.ID)
			}
			if task.PrepTime < 0 {
				return fmt.Errorf("task %s: negative prep time", task.ID)
			}
			if task.WordCountMax > 0 && task.WordCountMax < task.WordCountMin {
				return fmt.Errorf("task %s: word count bounds inverted", task.ID)
			}
			continue
		}

		for qi := range part.Questions {
			q := &part.Questions[qi]
			if q.ID == "" {
				return fmt.Errorf("part %s question %d: id is required", part.ID, qi)
			}
			if itemIDs[q.ID] {
				return fmt.Errorf("duplicate item id: %s", q.ID)
			}
			itemIDs[q.ID] = true
			if len(q.Options) < 2 {
				return fmt.Errorf("question %s: at least two options required", q.ID)
			}
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return fmt.Errorf("question %s: correct index out of range", q.ID)
			}
		}
	}
	return nil
}
