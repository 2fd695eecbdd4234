package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/nexora-edu/learning-service/internal/errors"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct validator with our custom rules registered.
type Validator struct {
	structValidator *validator.Validate
}

// New creates the centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags and converts failures to our error type
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("task_category", validateTaskCategory)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("submission_status", validateSubmissionStatus)

	// Report JSON field names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).Valid()
}

func validateTaskCategory(fl validator.FieldLevel) bool {
	return models.TaskCategory(fl.Field().String()).Valid()
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	return models.DifficultyLevel(fl.Field().String()).Valid()
}

// Review verdicts only; "pending" is not something a reviewer can set.
func validateSubmissionStatus(fl validator.FieldLevel) bool {
	switch models.SubmissionStatus(fl.Field().String()) {
	case models.SubmissionApproved, models.SubmissionRejected:
		return true
	}
	return false
}
