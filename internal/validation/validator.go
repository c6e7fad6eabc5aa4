// Package validation provides HTTP request validation using validator/v10.
package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/anilogapp/anilog-server/internal/domain"
	domainerrors "github.com/anilogapp/anilog-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our request types.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// ValidateScores checks a rating's criteria scores: every defined criterion
// must be present, nothing else may be, and each score sits in [0, 10].
func (v *Validator) ValidateScores(scores map[string]int) error {
	fieldErrors := make(map[string]string)
	known := make(map[string]bool, len(domain.Criteria))

	for _, c := range domain.Criteria {
		known[c.ID] = true
		score, ok := scores[c.ID]
		switch {
		case !ok:
			fieldErrors[c.ID] = "is required"
		case score < 0 || score > 10:
			fieldErrors[c.ID] = "must be between 0 and 10"
		}
	}
	for id := range scores {
		if !known[id] {
			fieldErrors[id] = "is not a rating criterion"
		}
	}

	if len(fieldErrors) > 0 {
		return domainerrors.ValidationWithDetails("invalid rating scores", fieldErrors)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s", e.Param())
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
