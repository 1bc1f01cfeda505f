package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldMessages maps "<json field>.<tag>" to the message shown next to the field.
var fieldMessages = map[string]string{
	"dish_name.min":  "Dish name must be at least 2 characters",
	"servings.min":   "Must be at least 1 serving",
	"servings.max":   "Maximum 20 servings",
	"email.required": "Invalid email address",
	"email.email":    "Invalid email address",
	"password.min":   "Password must be at least 8 characters",
	"password.max":   "Password must be at most 20 characters",
	"firstName.min":  "First name must be at least 2 characters",
	"lastName.min":   "Last name must be at least 2 characters",
}

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidationError holds one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks v against its validate tags and returns a *ValidationError
// keyed by json field name.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %s check", fe.Tag())
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

var unsafeDishChars = regexp.MustCompile(`(?i)[^a-z0-9\s\-,']`)

// SanitizeDishName strips characters the calorie service does not accept.
func SanitizeDishName(name string) string {
	return unsafeDishChars.ReplaceAllString(name, "")
}
