package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/celprep/practice-service/internal/errors"
	"github.com/celprep/practice-service/internal/models"
	"github.com/celprep/practice-service/internal/session"
)

// Validator wraps the struct validator with the service's custom rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags and converts failures into the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Custom validation functions

func ValidateSectionKind(fl validator.FieldLevel) bool {
	validKinds := []models.SectionKind{
		models.SectionListening,
		models.SectionReading,
		models.SectionWriting,
		models.SectionSpeaking,
	}

	value := fl.Field().String()
	for _, kind := range validKinds {
		if string(kind) == value {
			return true
		}
	}
	return false
}

func ValidateMicPolicy(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == string(session.MicDeniedRetry) || value == string(session.MicDeniedSkip)
}

func ValidateResponseKind(fl validator.FieldLevel) bool {
	validKinds := []session.ResponseKind{
		session.ResponseChoice,
		session.ResponseText,
		session.ResponseRecording,
	}

	value := fl.Field().String()
	for _, kind := range validKinds {
		if string(kind) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("section_kind", ValidateSectionKind)
	validate.RegisterValidation("mic_policy", ValidateMicPolicy)
	validate.RegisterValidation("response_kind", ValidateResponseKind)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
