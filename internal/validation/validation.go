// Package validation checks request payloads before they reach the duel engine
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"vocabduel/internal/engine"
	"vocabduel/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is every field that failed
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return strings.Join(parts, "; ")
}

// Validator checks structs tagged with `validate`
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the duel-specific tags registered:
// mode, preset, hinttype and sabotage.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		m := models.Mode(fl.Field().String())
		return m == models.ModeClassic || m == models.ModeSoloStyle
	}))
	must(v.RegisterValidation("preset", func(fl validator.FieldLevel) bool {
		_, ok := engine.PresetByName(fl.Field().String())
		return ok
	}))
	must(v.RegisterValidation("hinttype", func(fl validator.FieldLevel) bool {
		switch models.HintType(fl.Field().String()) {
		case models.HintLetters, models.HintFlash, models.HintTTS, models.HintAnagram, models.HintEliminate:
			return true
		}
		return false
	}))
	must(v.RegisterValidation("sabotage", func(fl validator.FieldLevel) bool {
		return engine.IsValidSabotageEffect(models.SabotageEffect(fl.Field().String()))
	}))

	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates s and returns Errors describing every failed field
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must not be negative"
	case "nefield":
		return "must differ from " + fe.Param()
	case "mode", "preset", "hinttype", "sabotage":
		return fmt.Sprintf("unknown %s %q", fe.Tag(), fe.Value())
	}
	return "is invalid"
}
