// Package validate wraps go-playground/validator with storefront rules and
// human-readable field messages. It satisfies echo.Validator.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Errors maps JSON field names to messages.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("mindigits", minDigits)
	return &Validator{v: v}
}

var std = New()

// Struct validates i with the shared validator.
func Struct(i interface{}) error {
	return std.Validate(i)
}

// Validate returns Errors for rule violations.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

// minDigits counts digits only, so "+256 700 123 456" satisfies mindigits=10.
func minDigits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	count := 0
	for _, r := range fl.Field().String() {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count >= n
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "mindigits":
		return fmt.Sprintf("must contain at least %s digits", fe.Param())
	default:
		return "is invalid"
	}
}
