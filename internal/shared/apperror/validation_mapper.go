package apperror

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fieldLabels overrides the generated label where plain title casing reads
// wrong.
var fieldLabels = map[string]string{
	"employeeId": "Employee ID",
}

// fieldMessages replaces every message for a field, whatever rule failed.
var fieldMessages = map[string]string{
	"email": "Valid email is required",
	"date":  "Valid date is required",
}

// formatFieldName turns a json field name into a label:
// fullName -> Full Name, full_name -> Full Name.
func formatFieldName(s string) string {
	if label, ok := fieldLabels[s]; ok {
		return label
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case i > 0 && unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	caser := cases.Title(language.English)
	return caser.String(b.String())
}

// choices renders "a b c" as "a, b, or c".
func choices(param string) string {
	opts := strings.Fields(param)
	switch len(opts) {
	case 0:
		return ""
	case 1:
		return opts[0]
	case 2:
		return opts[0] + " or " + opts[1]
	}
	return strings.Join(opts[:len(opts)-1], ", ") + ", or " + opts[len(opts)-1]
}

func fieldMessage(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.Field()]; ok {
		return msg
	}

	field := formatFieldName(e.Field())
	switch e.Tag() {
	case "required":
		return RequiredField(field).Message
	case "oneof":
		return field + " must be " + choices(e.Param())
	default:
		return InvalidField(field).Message
	}
}

// ValidationMessages lists one human readable message per failed field.
func ValidationMessages(err error) []string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, fieldMessage(e))
		}
		return msgs
	}
	return []string{"Request body is not valid JSON"}
}

// MapValidationError reduces a binding error to a single AppError built from
// the first failed field.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return New(CodeValidation, fieldMessage(errs[0]), http.StatusBadRequest)
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
