package web

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var marketRe = regexp.MustCompile(`^[A-Za-z0-9\-./]+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("market", func(fl validator.FieldLevel) bool {
		return marketRe.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validationMessage turns validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "ltfield":
		return fmt.Sprintf("%s must be lower than %s", f, lowerFirst(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", f, fe.Param())
	case "market":
		return f + " must contain only letters, digits, '-', '.' or '/'"
	case "len":
		return fmt.Sprintf("%s must be %s characters", f, fe.Param())
	case "alpha":
		return f + " must contain only letters"
	default:
		return fmt.Sprintf("%s is invalid (%s)", f, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
