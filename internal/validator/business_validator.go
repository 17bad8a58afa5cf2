package validator

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/shikshya-edu/institute-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a single field-level validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against business rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errs ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs = append(errs, ValidationError{
				Field:   fieldErr.Field(),
				Message: bv.getErrorMessage(fieldErr),
				Value:   fieldErr.Value(),
				Rule:    fieldErr.Tag(),
			})
		}
	}

	return errs
}

// ValidateRegister validates user self-registration.
func (bv *BusinessValidator) ValidateRegister(req *RegisterRequest) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, bv.Validate(req)...)
	errs = append(errs, bv.validatePasswordStrength("password", req.Password)...)
	return errs
}

// ValidateUserCreate validates admin-side user creation.
func (bv *BusinessValidator) ValidateUserCreate(req *UserCreateRequest) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, bv.Validate(req)...)
	errs = append(errs, bv.validatePasswordStrength("password", req.Password)...)
	return errs
}

// ValidateChangePassword validates a password change request.
func (bv *BusinessValidator) ValidateChangePassword(req *ChangePasswordRequest) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, bv.Validate(req)...)
	errs = append(errs, bv.validatePasswordStrength("newPassword", req.NewPassword)...)
	if req.NewPassword != "" && req.NewPassword == req.CurrentPassword {
		errs = append(errs, ValidationError{
			Field:   "newPassword",
			Message: "must differ from the current password",
			Rule:    "business_logic",
		})
	}
	return errs
}

// ValidateEnrollmentUpdate validates the desired subject set submitted by a
// user. Duplicate ids are accepted and collapsed downstream; blank ids are not.
func (bv *BusinessValidator) ValidateEnrollmentUpdate(req *EnrollmentUpdateRequest) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, bv.Validate(req)...)
	for i, id := range req.SubjectIDs {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("subjectIds[%d]", i),
				Message: "must not be blank",
				Rule:    "business_logic",
			})
		}
	}
	return errs
}

// validatePasswordStrength enforces the minimum password policy. Struct tags
// only see length; rune classes are checked here.
func (bv *BusinessValidator) validatePasswordStrength(field, password string) ValidationErrors {
	if password == "" {
		return nil // required tag reports the empty case
	}

	var errs ValidationErrors
	if len(password) < 8 {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "must be at least 8 characters",
			Rule:    "password_strength",
		})
		return errs
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "must contain at least one letter and one digit",
			Rule:    "password_strength",
		})
	}
	return errs
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Role validation
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		return role == models.RoleAdmin || role == models.RoleUser
	})

	// Subject name validation (1-100 characters after trimming)
	bv.validate.RegisterValidation("subject_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 1 && len(name) <= 100
	})

	// Full name validation (2-100 characters after trimming)
	bv.validate.RegisterValidation("full_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 2 && len(name) <= 100
	})

	// Absolute http(s) URL validation for carousel images
	bv.validate.RegisterValidation("image_url", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		u, err := url.Parse(raw)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})

	// Loose phone validation: digits, spaces and a few separators
	bv.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		if len(phone) < 7 || len(phone) > 20 {
			return false
		}
		for _, r := range phone {
			if !unicode.IsDigit(r) && !strings.ContainsRune("+- ()", r) {
				return false
			}
		}
		return true
	})
}

// getErrorMessage converts a validator error into a human readable message
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "uuid":
		return "must be a valid uuid"
	case "user_role":
		return "must be ADMIN or USER"
	case "subject_name":
		return "must be between 1 and 100 characters"
	case "full_name":
		return "must be between 2 and 100 characters"
	case "image_url":
		return "must be an absolute http or https URL"
	case "phone":
		return "must be a valid phone number"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
