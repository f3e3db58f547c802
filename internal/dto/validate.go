package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and returns a client-facing message for the
// first failing field.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "min":
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, fe.Param())
	case "email":
		return fmt.Errorf("%s must be a valid email address", field)
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
