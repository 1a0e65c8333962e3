package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations()
}

func registerCustomValidations() {
	// Exchange mode validation
	validate.RegisterValidation("offer_mode", func(fl validator.FieldLevel) bool {
		mode := fl.Field().String()
		return mode == "barter" || mode == "assistance"
	})

	// Location kind validation
	validate.RegisterValidation("location_kind", func(fl validator.FieldLevel) bool {
		kind := fl.Field().String()
		return kind == "online" || kind == "onsite"
	})

	// Skill level validation
	validate.RegisterValidation("skill_level", func(fl validator.FieldLevel) bool {
		level := fl.Field().String()
		validLevels := []string{"beginner", "intermediate", "advanced"}
		for _, l := range validLevels {
			if level == l {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "uuid":
			errors[field] = "Invalid UUID format"
		case "offer_mode":
			errors[field] = "Invalid mode. Must be: barter or assistance"
		case "location_kind":
			errors[field] = "Invalid location. Must be: online or onsite"
		case "skill_level":
			errors[field] = "Invalid level. Must be: beginner, intermediate, or advanced"
		case "oneof":
			errors[field] = "Invalid value. Must be one of: " + err.Param()
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
