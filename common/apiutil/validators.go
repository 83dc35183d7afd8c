package apiutil

import (
	"reflect"
	"strings"

	"github.com/Aidin1998/trivia/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Validator checks that the create, quiz and answer payloads carry their
// required keys. Only presence is checked here; whether a value can be
// stored is up to the trivia service.
type Validator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their JSON key so a client sees
// "quiz_category" rather than the Go field name.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v}
}

// Validate returns errors.Unprocessable naming every missing key.
func (v *Validator) Validate(req any) error {
	err := v.validator.Struct(req)
	if err == nil {
		return nil
	}
	missing := errors.Unprocessable.Explain("request is missing required keys")
	var fieldsErr validator.ValidationErrors
	if errors.As(err, &fieldsErr) {
		for _, fieldErr := range fieldsErr {
			missing = missing.WithField(fieldErr.Tag(), fieldErr.Field(), "must be present")
		}
	}
	return missing
}
