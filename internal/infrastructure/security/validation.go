package security

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Validator checks request payloads against their struct tags and renders
// failures as a validation AppError
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the custom rules registered
func NewValidator() *Validator {
	validate := validator.New()

	// Report JSON field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("ingredient_name", validateIngredientName)
	validate.RegisterValidation("dish_name", validateDishName)

	return &Validator{validate: validate}
}

// Struct validates s and returns a *errors.AppError on failure
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		return errors.NewBadRequestError(err.Error())
	}

	out := make([]errors.ValidationError, 0, len(validationErrs))
	for _, e := range validationErrs {
		out = append(out, errors.ValidationError{
			Field:   e.Field(),
			Value:   e.Value(),
			Tag:     e.Tag(),
			Message: message(e),
		})
	}
	return errors.NewValidationErrors(out)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "ingredient_name":
		return "Ingredient name must be 1-100 characters without control characters"
	case "dish_name":
		return "Dish name must be 1-200 characters without control characters"
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}

// validateIngredientName counts characters, not bytes, so Japanese names
// get the full allowance
func validateIngredientName(fl validator.FieldLevel) bool {
	return printableWithin(fl.Field().String(), 100)
}

func validateDishName(fl validator.FieldLevel) bool {
	return printableWithin(fl.Field().String(), 200)
}

func printableWithin(s string, max int) bool {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > max {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
