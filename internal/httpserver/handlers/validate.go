package handlers

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/yodda/internal/domain"
)

// NewValidator returns the request validator shared by every handler.
//
// Extra rules:
//   - weburl: accepted by domain.NormalizeURL ("example.com" is fine)
//   - decimal.Decimal fields compare as numbers (gte=0)
//
// Field names in errors are the JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		_, err := domain.NormalizeURL(fl.Field().String())
		return err == nil
	})

	return v
}
