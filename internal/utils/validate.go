package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs tag-based validation and flattens the first failure
// into a message the client can show directly.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		if first.Tag() == "required" {
			return fmt.Errorf("field %s is required", first.Field())
		}
		return fmt.Errorf("field %s failed %s validation", first.Field(), first.Tag())
	}
	return err
}
