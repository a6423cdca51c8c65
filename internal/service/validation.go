package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

// validationError maps validator failures to VALIDATION_ERROR listing the offending fields.
func validationError(err error, message string) *appErrors.Error {
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
		wrapped.Details = map[string]interface{}{"fields": fields}
	}
	return wrapped
}

// newValidator installs the payload rules on validate, creating one when nil.
func newValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	_ = dto.RegisterValidations(validate, nil)
	return validate
}
