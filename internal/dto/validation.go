package dto

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MinPublicationYear is the earliest accepted publication year.
const MinPublicationYear = 1900

// RegisterValidations installs the custom rules used by the request payloads.
func RegisterValidations(v *validator.Validate, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("pubyear", func(fl validator.FieldLevel) bool {
		year := int(fl.Field().Int())
		return year >= MinPublicationYear && year <= now().Year()+1
	}); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
