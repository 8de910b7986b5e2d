package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("section", "must be a valid section", "radio")

	if err.Field != "section" {
		t.Errorf("Expected field to be 'section', got '%s'", err.Field)
	}
	if err.Message != "must be a valid section" {
		t.Errorf("Expected message to be 'must be a valid section', got '%s'", err.Message)
	}
	if err.Value != "radio" {
		t.Errorf("Expected value to be 'radio', got '%v'", err.Value)
	}

	expected := "validation error on field 'section': must be a valid section"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("email", "is required", nil))
	expected := "validation failed: email is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("password", "must be at least 6", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}
