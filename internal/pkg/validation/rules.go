package validation

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/collegeerp/internal/pkg/helpers"
)

// custom validation tags
const (
	notBlankTag = "notblank"
	dateTag     = "isodate"
)

func registerRules() {
	_ = Validate.RegisterValidation(notBlankTag, notBlank)
	_ = Validate.RegisterValidation(dateTag, isoDate)

	// a RegisterTranslationsFunc is required, but the messages are built by
	// translateCustom so a noop is enough.
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, dateTag} {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case dateTag:
		return fe.Field() + " must be a date (YYYY-MM-DD) or an RFC 3339 timestamp"
	default:
		return fe.Field() + " is invalid"
	}
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// isoDate accepts empty strings; pair it with required when the date is mandatory.
func isoDate(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if str == "" {
		return true
	}
	_, ok = helpers.ParseTime(str)
	return ok
}
