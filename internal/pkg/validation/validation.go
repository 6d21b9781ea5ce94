// internal/pkg/validation/validation.go
package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// IsMobile reports whether s is exactly ten ASCII digits
func IsMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// IsEmail reports whether s looks like local@domain.tld
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Register adds the storefront's custom tags to v:
//
//	mobile      exactly ten digits
//	storeemail  local@domain.tld
//	notblank    non-empty after trimming spaces
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"mobile": func(fl validator.FieldLevel) bool {
			return IsMobile(fl.Field().String())
		},
		"storeemail": func(fl validator.FieldLevel) bool {
			return IsEmail(fl.Field().String())
		},
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// New returns a validator with the custom tags registered, reporting
// fields by their json names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}
