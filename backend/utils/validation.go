package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate проверяет структуру по тегам validate и возвращает ошибки по полям.
// Ключ - имя поля из json тега.
func Validate(data interface{}) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := "field must satisfy " + fe.Tag() + " constraint"
		if fe.Param() != "" {
			msg += " " + fe.Param()
		}
		out[fe.Field()] = msg
	}
	return out
}

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}
