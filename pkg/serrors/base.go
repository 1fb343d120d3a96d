package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error suitable for rendering at the API boundary.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	return &BaseError{
		Code:         e.Code,
		Message:      e.Message,
		LocaleKey:    e.LocaleKey,
		TemplateData: data,
	}
}

type ValidationErrors map[string]*BaseError

// ProcessValidatorErrors converts go-playground validator errors into
// field-keyed coded errors.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, err := range errs {
		out[err.Field()] = NewError(
			"VALIDATION_"+err.Tag(),
			fmt.Sprintf("field %s failed on %s", err.Field(), err.Tag()),
			"",
		)
	}
	return out
}
