package validator

import (
	"errors"
	"fmt"
	"strings"

	"pgstay/pkg/logger"
	"pgstay/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type PropertyValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPropertyValidator(log *logger.Logger) *PropertyValidator {
	return &PropertyValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *PropertyValidator) Validate(property *model.Property) error {
	if err := v.validate.Struct(property); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	totalRooms := 0
	for _, rt := range model.RoomTypes {
		totalRooms += property.RoomConfig.ForType(rt).Rooms
	}
	if totalRooms == 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "RoomConfig",
				Message: "at least one room type must have rooms",
			},
		}
	}

	return nil
}

func (v *PropertyValidator) ValidateUpdate(update *model.PropertyUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.RoomConfig != nil {
		totalRooms := 0
		for _, rt := range model.RoomTypes {
			totalRooms += update.RoomConfig.ForType(rt).Rooms
		}
		if totalRooms == 0 {
			return ValidationErrors{
				ValidationError{
					Field:   "RoomConfig",
					Message: "at least one room type must have rooms",
				},
			}
		}
	}

	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
