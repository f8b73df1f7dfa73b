// Package validation wraps go-playground/validator and turns its field errors into
// apperr validation errors with messages that name the JSON fields.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stem-workshop/certificates/pkg/apperr"
)

// Validator checks tagged request structs.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports JSON field names.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s. Missing fields are reported together; an enum mismatch
// names the accepted values.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindInternal, "validation failed", err)
	}

	var missing []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("All fields are required: missing " + strings.Join(missing, ", "))
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "oneof":
		return apperr.Validation(fmt.Sprintf("Invalid %s. Must be one of: %s",
			strings.ReplaceAll(fe.Field(), "_", " "), strings.Join(strings.Fields(fe.Param()), ", ")))
	default:
		return apperr.Validation(fmt.Sprintf("Invalid %s", fe.Field()))
	}
}

// TrimStrings trims surrounding whitespace from every exported string field of the
// struct pointed to by ptr.
func TrimStrings(ptr any) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
