package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// report fields under the names used in forms
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return strings.ToLower(field.Name)
			}
			return name
		})
	})
	return validate
}

// Validate checks the `validate` struct tags of v. It returns nil or a *ValidationError keyed by the mapstructure
// (form) names of the fields.
func Validate(v interface{}) *ValidationError {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return NewValidationError("__all__", err.Error())
	}
	var res *ValidationError
	for _, fe := range fieldErrors {
		res = res.Add(fe.Field(), fieldMessage(fe.Tag(), fe.Param()))
	}
	return res
}

// ValidateVar checks a single value against a tag list, reporting the failure under field.
func ValidateVar(field string, value interface{}, tag string) *ValidationError {
	err := validatorInstance().Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return NewValidationError(field, fieldMessage(fieldErrors[0].Tag(), fieldErrors[0].Param()))
	}
	return NewValidationError(field, err.Error())
}

func fieldMessage(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "numeric":
		return "Enter a number."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", param)
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", param)
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return fmt.Sprintf("Failed on the %q rule.", tag)
	}
}
