// Package forms validates the login and signup forms the same way the browser does, so a
// submission that skipped the page's constraints is answered identically.
package forms

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength matches the minlength attribute on the secret inputs.
const MinPasswordLength = 6

const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
)

// Credentials is a submitted login or signup form. ConfirmPassword is only checked on signup.
type Credentials struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=Password"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}

// messages is keyed by form field, then by the failing validation tag.
var messages = map[string]map[string]string{
	FieldEmail: {
		"required": "Email is required",
		"email":    "Please enter a valid email address",
	},
	FieldPassword: {
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
	},
	FieldConfirmPassword: {
		"eqfield": "Passwords do not match",
	},
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fe[field])
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the first failing field in form order.
func (fe FieldErrors) First() string {
	for _, field := range []string{FieldEmail, FieldPassword, FieldConfirmPassword} {
		if msg, ok := fe[field]; ok {
			return msg
		}
	}
	return ""
}

// ValidateLogin returns nil or a FieldErrors. The email is trimmed before it is checked.
func ValidateLogin(c Credentials) error {
	c.Email = strings.TrimSpace(c.Email)
	return fieldErrors(validate.StructExcept(c, "ConfirmPassword"))
}

// ValidateSignup also requires the confirmation to match. A password that fails its own
// checks is not reported a second time as a mismatch.
func ValidateSignup(c Credentials) error {
	c.Email = strings.TrimSpace(c.Email)
	err := fieldErrors(validate.Struct(c))
	var fe FieldErrors
	if errors.As(err, &fe) {
		if _, failed := fe[FieldPassword]; failed {
			delete(fe, FieldConfirmPassword)
		}
		if len(fe) == 0 {
			return nil
		}
	}
	return err
}

func fieldErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := FieldErrors{}
	for _, verr := range verrs {
		if _, seen := fe[verr.Field()]; seen {
			continue
		}
		msg, ok := messages[verr.Field()][verr.Tag()]
		if !ok {
			msg = verr.Error()
		}
		fe[verr.Field()] = msg
	}
	return fe
}

// Strength scores a password from 0 to 5: one point each for length of at least 8, a lower
// case letter, an upper case letter, a digit and any other character.
func Strength(password string) int {
	if password == "" {
		return 0
	}
	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}

	score := 0
	for _, ok := range []bool{len(password) >= 8, lower, upper, digit, other} {
		if ok {
			score++
		}
	}
	return score
}

// StrengthLabel buckets a score the way the strength meter colours it.
func StrengthLabel(score int) string {
	switch {
	case score <= 0:
		return ""
	case score <= 2:
		return "weak"
	case score <= 3:
		return "medium"
	default:
		return "strong"
	}
}
