package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordLength = 72
)

// ValidateUsername applies the admin username rule and returns the trimmed name.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return "", NewError(ErrInvalidInput,
			fmt.Sprintf("Username must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	}
	if !usernameRegex.MatchString(username) {
		return "", NewError(ErrInvalidInput, "Username can only contain letters, numbers and underscores")
	}
	return username, nil
}

// ValidatePassword requires 8+ characters with at least one ASCII uppercase
// letter and one digit.
func ValidatePassword(password string) error {
	if len(password) > maxPasswordLength {
		return NewError(ErrInvalidInput, "Password is too long")
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if len([]rune(password)) < minPasswordLength || !hasUpper || !hasDigit {
		return NewError(ErrInvalidInput, "Password must contain 8+ characters with uppercase and number")
	}
	return nil
}

// FieldError is one failed struct-tag rule on a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestValidator checks decoded request bodies against their `validate` tags.
type RequestValidator struct {
	cli *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	}); err != nil {
		panic(fmt.Sprintf("register username validation: %v", err))
	}
	return &RequestValidator{cli: v}
}

// ValidateStruct returns nil when s passes, otherwise an ErrInvalidInput
// error naming the first failing field.
func (v *RequestValidator) ValidateStruct(s interface{}) error {
	fields := v.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return NewError(ErrInvalidInput, fields[0].Message)
}

func (v *RequestValidator) Fields(s interface{}) []FieldError {
	err := v.cli.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "username":
		return "Username can only contain letters, numbers and underscores"
	case "min", "max":
		return fmt.Sprintf("%s length is out of range", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
