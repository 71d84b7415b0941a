// Package validation evaluates the declarative `validate` struct tags of the
// request payloads and turns the first failing constraint into a
// *models.ValidationError with a readable message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

// Validator wraps a configured go-playground validator instance.
// It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New registers the project specific rules and the JSON field naming.
func New() (*Validator, error) {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := validate.RegisterValidation("tld", validateTLD); err != nil {
		return nil, fmt.Errorf("in internal/validation/validation.go/New(): error while `validate.RegisterValidation()` calling: %w", err)
	}

	return &Validator{validate: validate}, nil
}

// MustNew is New for package level wiring where a registration failure is a programming error.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Struct validates payload. It returns nil or a *models.ValidationError.
func (v *Validator) Struct(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return models.NewValidationError(err.Error())
	}

	return models.NewValidationError(describe(fieldErrors[0]))
}

// validateTLD accepts addresses whose top level domain is in the
// space separated allow-list given as the tag parameter.
func validateTLD(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()
	at := strings.LastIndex(value, "@")
	if at < 0 {
		return false
	}

	labels := strings.Split(value[at+1:], ".")
	if len(labels) < 2 {
		return false
	}

	allowed := strings.Fields(fieldLevel.Param())

	return funk.ContainsString(allowed, strings.ToLower(labels[len(labels)-1]))
}

func describe(fieldError validator.FieldError) string {
	field := fieldError.Field()

	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "tld":
		return fmt.Sprintf("%q must have one of the allowed top level domains: %s", field, strings.ReplaceAll(fieldError.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", field, fieldError.Param())
	}

	return fmt.Sprintf("%q failed on the %q rule", field, fieldError.Tag())
}
