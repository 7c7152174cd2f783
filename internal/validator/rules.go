package validator

import (
	"careshift_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules adds the domain enum rules used by query and body DTOs.
func registerCustomRules(v *validator.Validate) error {
	if err := v.RegisterValidation("shift_status", func(fl validator.FieldLevel) bool {
		return models.IsValidShiftStatus(fl.Field().String())
	}); err != nil {
		return err
	}

	if err := v.RegisterValidation("application_status", func(fl validator.FieldLevel) bool {
		return models.IsValidApplicationStatus(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("actor_role", func(fl validator.FieldLevel) bool {
		return models.IsValidActorRole(fl.Field().String())
	})
}
