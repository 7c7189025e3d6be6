// Package validation evaluates struct-tag field rules and reports every
// failing field, in declaration order, as a Violation.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"fieldName"`
	Message string `json:"message"`
}

// Messages maps a JSON field name to the message reported when it fails.
type Messages map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags. Each failing field yields
// one Violation; fields are reported in the order they are declared.
// Fields without an entry in msgs fall back to the validator's own text.
func Struct(s any, msgs Messages) []Violation {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Field: "", Message: err.Error()}}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := msgs[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		violations = append(violations, Violation{Field: fe.Field(), Message: msg})
	}
	return violations
}
