package api

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validateMaxBytes в отличии от тэга max который проверяет длину рун, - проверят длину байт в поле.
func validateMaxBytes(fl validator.FieldLevel) bool {
	param := fl.Param() // получаем значение из тега
	maxBytes, err := strconv.Atoi(param)
	if err != nil {
		return false
	}

	// нужно убедится что значение поля - строка.
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return len([]byte(str)) <= maxBytes
}

// decimalValue отдает валидатору decimal.Decimal как float64, чтоб работали тэги gte, lte и т.п.
func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return d.InexactFloat64()
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validator registration: unexpected engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("max_bytes", validateMaxBytes); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return nil
}
