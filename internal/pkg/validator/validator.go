package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// geoErrorCodes - коды платформенных ошибок геолокации, принимаемые сервисом
var geoErrorCodes = map[string]struct{}{
	"permission_denied":    {},
	"position_unavailable": {},
	"timeout":              {},
}

func init() {
	validate = validator.New()
	// geo_error_code сверяет код ошибки геолокации со словарём известных кодов
	_ = validate.RegisterValidation("geo_error_code", func(fl validator.FieldLevel) bool {
		_, ok := geoErrorCodes[fl.Field().String()]
		return ok
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
