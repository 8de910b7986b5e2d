package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/repositories"
	"github.com/celprep/practice-service/internal/utils"
)

// ===== REQUEST/RESPONSE STRUCTS =====

type CreateQuestionRequest struct {
	Section      string   `json:"section" validate:"required,section_kind"`
	Prompt       string   `json:"prompt" validate:"required,min=1"`
	Options      []string `json:"options" validate:"omitempty,min=2,dive,required"`
	CorrectIndex *int     `json:"correct_index" validate:"omitempty,min=0"`
	Explanation  string   `json:"explanation"`
}

type UpdateQuestionRequest struct {
	Prompt       *string  `json:"prompt" validate:"omitempty,min=1"`
	Options      []string `json:"options" validate:"omitempty,min=2,dive,required"`
	CorrectIndex *int     `json:"correct_index" validate:"omitempty,min=0"`
	Explanation  *string  `json:"explanation"`
}

type QuestionListResponse struct {
	Questions []*models.QuestionRecord `json:"questions"`
	Total     int64                    `json:"total"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
}

// ImportRowError reports one rejected spreadsheet row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ImportResult struct {
	TotalRows    int              `json:"total_rows"`
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Errors       []ImportRowError `json:"errors,omitempty"`
}

// ===== SERVICE INTERFACE =====

// ContentService maintains the admin question bank: records that persist
// across restarts, unlike the seed catalog compiled into the binary.
type ContentService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.QuestionRecord, error)
	GetByID(ctx context.Context, id uint) (*models.QuestionRecord, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest) (*models.QuestionRecord, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.QuestionRecordFilters) (*QuestionListResponse, error)

	ExportToExcel(ctx context.Context, filters repositories.QuestionRecordFilters) ([]byte, error)
	ImportFromExcel(ctx context.Context, reader io.Reader, creatorID string) (*ImportResult, error)
}

type contentService struct {
	repo      repositories.Repository
	validator *utils.Validator
	logger    *slog.Logger
}

// NewContentService creates a new content service with its dependencies
func NewContentService(repo repositories.Repository, validator *utils.Validator, logger *slog.Logger) ContentService {
	return &contentService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// ===== CRUD OPERATIONS =====

func (s *contentService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.QuestionRecord, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateCorrectIndex(req.CorrectIndex, req.Options); err != nil {
		return nil, err
	}

	options, err := marshalOptions(req.Options)
	if err != nil {
		return nil, err
	}
	record := &models.QuestionRecord{
		Section:      models.SectionKind(req.Section),
		Prompt:       req.Prompt,
		Options:      options,
		CorrectIndex: req.CorrectIndex,
		CreatedBy:    creatorID,
	}
	if req.Explanation != "" {
		record.Explanation = &req.Explanation
	}

	if err := s.repo.QuestionRecord().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", record.ID, "section", record.Section, "created_by", creatorID)
	return record, nil
}

func (s *contentService) GetByID(ctx context.Context, id uint) (*models.QuestionRecord, error) {
	record, err := s.repo.QuestionRecord().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return record, nil
}

func (s *contentService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest) (*models.QuestionRecord, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	record, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Prompt != nil {
		record.Prompt = *req.Prompt
	}
	if req.Options != nil {
		options, err := marshalOptions(req.Options)
		if err != nil {
			return nil, err
		}
		record.Options = options
	}
	if req.CorrectIndex != nil {
		record.CorrectIndex = req.CorrectIndex
	}
	if req.Explanation != nil {
		record.Explanation = req.Explanation
	}
	if err := validateCorrectIndex(record.CorrectIndex, unmarshalOptions(record.Options)); err != nil {
		return nil, err
	}

	if err := s.repo.QuestionRecord().Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return record, nil
}

func (s *contentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.QuestionRecord().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.logger.Info("Question deleted", "question_id", id)
	return nil
}

func (s *contentService) List(ctx context.Context, filters repositories.QuestionRecordFilters) (*QuestionListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	records, total, err := s.repo.QuestionRecord().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return &QuestionListResponse{
		Questions: records,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

// ===== EXPORT/IMPORT OPERATIONS =====

var excelHeaders = []string{"Section", "Prompt", "Option A", "Option B", "Option C", "Option D", "Correct Answer", "Explanation"}

func (s *contentService) ExportToExcel(ctx context.Context, filters repositories.QuestionRecordFilters) ([]byte, error) {
	// Export ignores pagination; the whole filtered bank goes to the sheet.
	filters.Limit = 0
	filters.Offset = 0
	records, _, err := s.repo.QuestionRecord().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Questions"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range excelHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, record := range records {
		row := questionToRow(record)
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *contentService) ImportFromExcel(ctx context.Context, reader io.Reader, creatorID string) (*ImportResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"section", "prompt"} {
		if _, ok := headerMap[required]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrValidationFailed, required)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}
	var records []*models.QuestionRecord

	for rowIndex, row := range rows[1:] {
		record, rowErrs := s.parseRow(row, headerMap, rowIndex+2, creatorID)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			result.ErrorCount++
			continue
		}
		records = append(records, record)
	}

	for _, record := range records {
		if err := s.repo.QuestionRecord().Create(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to save imported questions: %w", err)
		}
		result.SuccessCount++
	}

	s.logger.Info("Question import completed",
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)
	return result, nil
}

func (s *contentService) parseRow(row []string, headerMap map[string]int, rowNum int, creatorID string) (*models.QuestionRecord, []ImportRowError) {
	cell := func(name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var errs []ImportRowError
	record := &models.QuestionRecord{
		Section:   models.SectionKind(cell("section")),
		Prompt:    cell("prompt"),
		CreatedBy: creatorID,
	}
	if err := s.validator.Validate(record); err != nil {
		errs = append(errs, ImportRowError{Row: rowNum, Field: "record", Message: err.Error()})
	}

	var options []string
	for _, col := range []string{"option a", "option b", "option c", "option d"} {
		if v := cell(col); v != "" {
			options = append(options, v)
		}
	}
	if len(options) > 0 {
		data, err := json.Marshal(options)
		if err == nil {
			record.Options = datatypes.JSON(data)
		}
	}

	if answer := cell("correct answer"); answer != "" {
		idx, err := parseCorrectAnswer(answer, len(options))
		if err != nil {
			errs = append(errs, ImportRowError{Row: rowNum, Field: "correct answer", Message: err.Error()})
		} else {
			record.CorrectIndex = &idx
		}
	}
	if explanation := cell("explanation"); explanation != "" {
		record.Explanation = &explanation
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return record, nil
}

// ===== HELPERS =====

func questionToRow(record *models.QuestionRecord) []string {
	row := []string{string(record.Section), record.Prompt, "", "", "", "", "", ""}
	for i, option := range unmarshalOptions(record.Options) {
		if i > 3 {
			break
		}
		row[2+i] = option
	}
	if record.CorrectIndex != nil {
		row[6] = string(rune('A' + *record.CorrectIndex))
	}
	if record.Explanation != nil {
		row[7] = *record.Explanation
	}
	return row
}

// parseCorrectAnswer accepts a letter ("A".."D") or a 1-based number.
func parseCorrectAnswer(value string, optionCount int) (int, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	var idx int
	if len(value) == 1 && value[0] >= 'A' && value[0] <= 'Z' {
		idx = int(value[0] - 'A')
	} else {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid correct answer %q", value)
		}
		idx = n - 1
	}
	if idx < 0 || idx >= optionCount {
		return 0, fmt.Errorf("correct answer %q is out of range for %d options", value, optionCount)
	}
	return idx, nil
}

func validateCorrectIndex(index *int, options []string) error {
	if index == nil {
		return nil
	}
	if len(options) == 0 {
		return fmt.Errorf("%w: correct_index requires options", ErrValidationFailed)
	}
	if *index >= len(options) {
		return fmt.Errorf("%w: correct_index out of range", ErrValidationFailed)
	}
	return nil
}

func marshalOptions(options []string) (datatypes.JSON, error) {
	if len(options) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return datatypes.JSON(data), nil
}

func unmarshalOptions(data datatypes.JSON) []string {
	if len(data) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(data, &options); err != nil {
		return nil
	}
	return options
}
