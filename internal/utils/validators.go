package utils

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// IsValidPeriod checks for an evaluated month written as YYYY-MM.
func IsValidPeriod(period string) bool {
	_, err := time.Parse("2006-01", period)
	return err == nil
}

// RegisterValidators adds the form tags used by the employee form.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		return IsValidPeriod(fl.Field().String())
	})
}
