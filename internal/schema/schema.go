// Package schema holds the explicit validation schemas shared by the API
// boundary and the client forms.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a payload does not satisfy its schema.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the message recorded for name, or "" when the field passed.
func (e *ValidationError) Field(name string) string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message
		}
	}
	return ""
}

// MessageFunc renders a human readable message for a failed rule.
type MessageFunc func(fe validator.FieldError) string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		n, ok := field.Interface().(NullableString)
		if !ok || !n.Valid {
			return nil
		}
		return n.Value
	}, NullableString{})

	if err := v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := ParseTimestamp(s)
		return err == nil
	}); err != nil {
		panic(err)
	}

	if err := v.RegisterValidation("datetime_local", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := ParseLocal(s)
		return err == nil
	}); err != nil {
		panic(err)
	}

	return v
}

// Check validates v against its struct tags and converts failures into a
// *ValidationError, using msg to render each message.
func Check(v any, msg MessageFunc) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg(fe)})
	}
	return out
}

// APIMessage renders messages in the wording the HTTP API returns.
func APIMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s",
			fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "iso8601":
		return fmt.Sprintf("%s must be a valid ISO 8601 date string", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
