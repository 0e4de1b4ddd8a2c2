package user

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// phonePattern: +7 followed by exactly 10 digits (11 digits total
// including the country code).
var phonePattern = regexp.MustCompile(`^\+7\d{10}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration cannot fail for a static pattern tag.
	_ = v.RegisterValidation("phone_ru", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidationError carries human-readable per-field messages for a
// rejected payload.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

// UpdateUserRequest is the payload for updating the requester's profile.
// is_superuser and the password are deliberately not part of this type:
// they cannot be changed through the profile-update path.
type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Username    string  `json:"username" validate:"required"`
	Avatar      *string `json:"avatar"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,phone_ru"`
	IsActive    bool    `json:"is_active"`
	IsVerified  bool    `json:"is_verified"`
}

// Validate checks the payload shape before any write reaches the store.
func (r *UpdateUserRequest) Validate() error {
	return validateStruct(r)
}

// ValidatePhoneNumber accepts phone numbers of the form +7XXXXXXXXXX.
func ValidatePhoneNumber(phone string) error {
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Fields: []string{phoneErrorMessage}}
	}
	return nil
}

const phoneErrorMessage = "phone_number must start with +7 and contain 11 digits including the country code"

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fieldError(fe))
		}
		return &ValidationError{Fields: msgs}
	}
	return err
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "phone_ru":
		return phoneErrorMessage
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// jsonFieldName maps struct field names to their wire names.
func jsonFieldName(field string) string {
	switch field {
	case "PhoneNumber":
		return "phone_number"
	case "IsActive":
		return "is_active"
	case "IsVerified":
		return "is_verified"
	default:
		return strings.ToLower(field)
	}
}
