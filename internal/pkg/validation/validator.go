// Package validation checks request payloads with go-playground/validator,
// reporting failures as apperrors validation errors named by JSON field.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerRules()
}

// Struct validates v. Missing required fields are reported together as
// "Missing required fields: a, b"; any other failure lists the translated
// messages and carries them per field in the error details.
func Struct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error())
	}

	var missing, messages []string
	fields := make(map[string]interface{})
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		msg := fe.Translate(Translator)
		fields[fe.Field()] = msg
		messages = append(messages, msg)
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFieldsError(missing...)
	}
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, strings.Join(messages, "; ")).WithDetails(fields)
}

// DecodeStrict decodes a JSON object into v, rejecting fields v does not
// declare. Patches use it so that immutable or misspelled columns fail
// instead of being ignored.
func DecodeStrict(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("Request body is empty")
		}
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return apperrors.NewValidationError(fmt.Sprintf("Field %s cannot be updated", strings.Trim(field, `"`)))
		}
		return apperrors.NewValidationError(fmt.Sprintf("Invalid request body: %v", err))
	}
	return nil
}
