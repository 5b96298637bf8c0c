package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("ru_phone", func(fl validator.FieldLevel) bool {
		return partner.ValidatePhone(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("shop_email", func(fl validator.FieldLevel) bool {
		return partner.ValidateEmail(strings.ToLower(strings.TrimSpace(fl.Field().String())))
	})
	return v
}

// fieldCodes maps document fields to the error code reported when they fail
var fieldCodes = map[string]string{
	"number":         shared.CodeInvalidNumber,
	"client_number":  shared.CodeInvalidNumber,
	"fio":            shared.CodeInvalidName,
	"name":           shared.CodeInvalidName,
	"phone":          shared.CodeInvalidPhone,
	"email":          shared.CodeInvalidEmail,
	"date":           shared.CodeInvalidDate,
	"schema_version": shared.CodeUnsupportedSchema,
	"products_list":  shared.CodeMalformedLineItem,
	"products_kg":    shared.CodeMalformedLineItem,
}

// validateDocument runs struct validation and converts every failure into a DomainError
func validateDocument(doc any) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return shared.WrapDomainError(shared.CodeInvalidInput, err, "Document validation failed")
	}

	var result error
	for _, e := range validationErrors {
		field := e.Field()
		result = multierr.Append(result, shared.NewFieldError(
			codeForField(field),
			field,
			fmt.Sprint(e.Value()),
			fmt.Sprintf("%s: %s", field, validationMessage(e)),
		))
	}
	return result
}

func codeForField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if code, ok := fieldCodes[field]; ok {
		return code
	}
	return shared.CodeInvalidInput
}

// validationMessage returns a human-readable validation message
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "ru_phone":
		return fmt.Sprintf("invalid phone %q, expected +7 followed by 10 digits", e.Value())
	case "shop_email":
		return fmt.Sprintf("invalid email %q", e.Value())
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "max":
		return "must be at most " + e.Param() + " characters"
	default:
		return "invalid value"
	}
}
