// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator for structured validation.
// Field errors are reported under the field's `env` tag when it has one, so
// settings structs report the environment variable an operator has to set.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.TrimSpace(field.Tag.Get("env"))
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Missing validates s and returns the names of fields failing a `required`
// rule, in declaration order. Any other validation failure is returned as err.
func (val *Validator) Missing(s any) ([]string, error) {
	err := val.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() != "required" {
			return nil, err
		}
		missing = append(missing, fe.Field())
	}
	return missing, nil
}
