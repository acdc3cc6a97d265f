package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatFieldName turns "start_date" or "startDate" into "Start Date".
func formatFieldName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	caser := cases.Title(language.English)
	return caser.String(b.String())
}

// MapValidationError converts binding failures into a 400 AppError that names
// every offending field.
func MapValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		details := make([]FieldDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldDetail{Field: fe.Field(), Rule: fe.Tag()})
		}

		first := formatFieldName(verrs[0].Field())
		var appErr *AppError
		if verrs[0].Tag() == "required" {
			appErr = RequiredField(first)
		} else {
			appErr = InvalidField(first)
		}
		return appErr.WithDetails(details)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return InvalidField(formatFieldName(typeErr.Field)).
			WithDetails([]FieldDetail{{Field: typeErr.Field, Rule: "type"}})
	}

	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return New(CodeValidation, "Date must use the YYYY-MM-DD format", http.StatusBadRequest)
	}

	return New(
		CodeValidation,
		"Invalid input",
		http.StatusBadRequest,
	)
}
