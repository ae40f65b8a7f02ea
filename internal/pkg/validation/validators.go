package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/questionbank/internal/app/models"
)

// Register installs the custom tags used by the request DTOs and makes
// validation errors report JSON field names.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonTagName)

	return v.RegisterValidation("roletype", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRoleType(fl.Field().String())
		return err == nil
	})
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}
