package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-tracker/internal/analytics"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the job tracker's custom tags
// registered:
//
//	jobstatus  value is one of analytics.Statuses (exact match)
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("jobstatus", func(fl validator.FieldLevel) bool {
			return analytics.Status(fl.Field().String()).Valid()
		})
	})
	return validate
}

// ValidationMessage renders the first validation failure as a short message.
func ValidationMessage(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		field := ve.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return fmt.Sprintf("validation error: %s - %s", field, describeTag(ve))
	}
	return "validation error: invalid request"
}

func describeTag(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + ve.Param()
	case "max":
		return "must be at most " + ve.Param()
	case "len":
		return "must be exactly " + ve.Param() + " characters"
	case "numeric":
		return "must contain digits only"
	case "eqfield":
		return "must match " + ve.Param()
	case "nefield":
		return "must differ from " + ve.Param()
	case "jobstatus":
		return "must be a known status"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "uuid":
		return "must be a valid code"
	case "url":
		return "must be a valid URL"
	default:
		return ve.Tag()
	}
}

// StringList is a list of short labels. On the wire it is a JSON array of
// strings, but a single comma-separated string is also accepted.
type StringList []string

// UnmarshalJSON accepts an array of strings, a comma-separated string or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode list: %w", err)
		}
		*l = ParseList(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to decode list: %w", err)
	}
	*l = cleanList(items)
	return nil
}

// ParseList splits a comma-separated string into trimmed, non-empty items.
func ParseList(s string) StringList {
	return cleanList(strings.Split(s, ","))
}

func cleanList(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
