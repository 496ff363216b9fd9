package jsonresponse

import (
	"github.com/go-playground/validator/v10"
)

// GetErrorMsg returns a human readable message for the failed validation tag.
// The caller prepends the field name.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "gte":
		return " must be greater than or equal to " + fe.Param()
	default:
		return " is invalid"
	}
}
