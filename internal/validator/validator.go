// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Currency codes are 1-10 letters. Free-form codes like "BTC" or "USDT"
// are accepted alongside ISO 4217.
var currencyCodeRegex = regexp.MustCompile(`^[A-Za-z]{1,10}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Expose decimal.Decimal fields to numeric rules (gt, gte, lte)
		// as their float value.
		v.RegisterCustomTypeFunc(decimalToFloat, decimal.Decimal{})
		_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	}
}

func decimalToFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodeRegex.MatchString(fl.Field().String())
}
