// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

// Package validation checks decoded request payloads and model output with
// go-playground/validator and renders failures for the API error envelope.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// CodeValidationFailed is the API error code for every validation failure.
const CodeValidationFailed = "VALIDATION_FAILED"

// FieldError is one rejected field, keyed by its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Message }

// Failure collects every rejected field of one payload.
type Failure struct {
	Fields []FieldError
}

func (f *Failure) Error() string {
	if len(f.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(f.Fields))
	for i, fe := range f.Fields {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Message is the envelope message: the lone field message, or all of them
// joined.
func (f *Failure) Message() string {
	if len(f.Fields) == 0 {
		return "Validation failed"
	}
	return f.Error()
}

// Details is the envelope details object.
func (f *Failure) Details() map[string]any {
	return map[string]any{"fields": f.Fields}
}

var (
	instance *validator.Validate
	once     sync.Once
)

// Validator returns the shared validator with the domain rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		for tag, fn := range domainRules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("validation: register %s: %v", tag, err))
			}
		}
		instance = v
	})
	return instance
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// maxTMDBID bounds TMDB identifiers to the int32 range TMDB uses.
const maxTMDBID = 1<<31 - 1

// Domain rules:
//
//	tmdbid  a positive TMDB identifier
//	lang    a lowercase ISO 639-1 code such as "en" or "ko"
var domainRules = map[string]validator.Func{
	"tmdbid": func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			id := fl.Field().Int()
			return id > 0 && id <= maxTMDBID
		}
		return false
	},
	"lang": func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) == 2 && s[0] >= 'a' && s[0] <= 'z' && s[1] >= 'a' && s[1] <= 'z'
	},
}

// ValidateStruct returns nil when s passes, otherwise a *Failure listing
// every rejected field.
func ValidateStruct(s any) *Failure {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Failure{Fields: []FieldError{{Field: "body", Rule: "invalid", Message: err.Error()}}}
	}

	out := &Failure{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "tmdbid":
		return field + " must be a valid TMDB ID"
	case "lang":
		return field + " must be a two-letter lowercase language code"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "len":
		return fmt.Sprintf("%s must have length %s", field, param)
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must have %s %s characters", field, bound, param)
		case reflect.Slice:
			return fmt.Sprintf("%s must have %s %s items", field, bound, param)
		}
		return fmt.Sprintf("%s must be %s %s", field, bound, param)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
