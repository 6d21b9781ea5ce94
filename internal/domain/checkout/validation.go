// internal/domain/checkout/validation.go
package checkout

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldMessages = map[string]string{
	"mobile":     "Mobile number must be exactly 10 digits.",
	"email":      "Please enter a valid email address.",
	"firstName":  "First name is required.",
	"lastName":   "Last name is required.",
	"address":    "Address is required.",
	"city":       "City is required.",
	"state":      "State is required.",
	"postalCode": "Postal code is required.",
	"country":    "Country is required.",
}

// FormValidator checks checkout forms with the storefront's custom tags
type FormValidator struct {
	validate     *validator.Validate
	requireState bool
}

// NewFormValidator wraps v, which must have the mobile, storeemail and
// notblank tags registered
func NewFormValidator(v *validator.Validate, requireState bool) *FormValidator {
	return &FormValidator{validate: v, requireState: requireState}
}

// Validate returns nil or a *ValidationError
func (fv *FormValidator) Validate(f *Form) error {
	fields := make(map[string]string)

	if err := fv.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = messageFor(fe.Field())
		}
	}

	if fv.requireState && strings.TrimSpace(f.State) == "" {
		fields["state"] = messageFor("state")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func messageFor(field string) string {
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return field + " is invalid."
}
