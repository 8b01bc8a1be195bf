package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// RequestValidator checks request DTOs and renders failures as readable English messages
// keyed by the JSON (or query) field name.
type RequestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewRequestValidator() *RequestValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "query", "params"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	return &RequestValidator{validate: validate, trans: trans}
}

// Struct validates s and returns a *RequestError describing every failing field.
func (v *RequestValidator) Struct(s interface{}) error {
	return v.wrap(v.validate.Struct(s), "")
}

// Var validates a single value such as a path parameter.
func (v *RequestValidator) Var(name string, value interface{}, tag string) error {
	return v.wrap(v.validate.Var(value, tag), name)
}

func (v *RequestValidator) wrap(err error, name string) error {
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &RequestError{Message: err.Error()}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		key := e.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		if key == "" {
			key = name
		}
		msg := e.Translate(v.trans)
		if e.Field() == "" {
			msg = name + msg
		}
		fields[key] = msg
	}
	return &RequestError{Message: "Validation failed", Fields: fields}
}
