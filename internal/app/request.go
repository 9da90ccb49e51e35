package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultMaxArticles = 20
	DefaultTimeRange   = "24h"
)

// SearchRequest is one client query.
type SearchRequest struct {
	Query          string   `json:"query" validate:"required,min=3,max=200,meaningful"`
	MaxArticles    int      `json:"max_articles" validate:"min=5,max=50"`
	TimeRange      string   `json:"time_range" validate:"oneof=1h 6h 12h 24h 48h 7d 30d"`
	IncludeSources []string `json:"include_sources,omitempty"`
	ExcludeSources []string `json:"exclude_sources,omitempty"`
}

// Normalize collapses whitespace in the query, fills defaults and cleans
// the source lists.
func (r *SearchRequest) Normalize() {
	r.Query = strings.Join(strings.Fields(r.Query), " ")
	if r.MaxArticles == 0 {
		r.MaxArticles = DefaultMaxArticles
	}
	r.TimeRange = strings.TrimSpace(r.TimeRange)
	if r.TimeRange == "" {
		r.TimeRange = DefaultTimeRange
	}
	r.IncludeSources = cleanSources(r.IncludeSources)
	r.ExcludeSources = cleanSources(r.ExcludeSources)
}

// cleanSources trims and lower-cases entries, dropping empty and repeated ones.
func cleanSources(sources []string) []string {
	if len(sources) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NewValidator returns a validator that reports fields by their json names
// and knows the "meaningful" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("meaningful", meaningful); err != nil {
		panic(fmt.Sprintf("register meaningful validation: %v", err))
	}
	return v
}

// meaningful requires at least two non-space characters.
func meaningful(fl validator.FieldLevel) bool {
	n := 0
	for _, r := range fl.Field().String() {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n >= 2
}

// Validate checks r and converts validator failures into a ValidationError.
func Validate(v *validator.Validate, r SearchRequest) error {
	err := v.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.NewValidation(err.Error(), nil)
	}
	return ValidationFailure(verrs)
}

// ValidationFailure describes each failed field.
func ValidationFailure(verrs validator.ValidationErrors) *apperr.ValidationError {
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperr.NewValidation("Request validation failed", map[string]any{"fields": fields})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "meaningful":
		return "must contain at least 2 non-space characters"
	default:
		return "is invalid"
	}
}
