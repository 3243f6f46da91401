package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// decimalDecodePrefix starts every error shopspring/decimal returns from UnmarshalJSON
const decimalDecodePrefix = "error decoding string"

// RegisterFieldNames makes validation messages name fields the way clients
// send them: the json name, then the form name, then the Go name.
func RegisterFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})
}

// ValidationError sends a 400 response for a request that failed binding
func ValidationError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	ctx := c.Request.Context()

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		logger.WarnWithError(ctx, "validation failed", err)
		respond(c, http.StatusBadRequest, "INVALID_INPUT", buildValidationMessage(validationErrs), nil)
		return
	}

	logger.WarnWithError(ctx, "request binding failed", err)
	respond(c, http.StatusBadRequest, "INVALID_INPUT", bindingMessage(err), nil)
}

// bindingMessage describes a body that could not be decoded at all
func bindingMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind())
	}
	if strings.HasPrefix(err.Error(), decimalDecodePrefix) {
		return "Amounts must be decimal numbers, for example \"1.5\""
	}
	return "Invalid request format. Please check your JSON syntax."
}

func buildValidationMessage(validationErrs validator.ValidationErrors) string {
	if len(validationErrs) == 1 {
		return getValidationMessage(validationErrs[0])
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, getValidationMessage(fieldErr))
	}
	return "Validation failed: " + strings.Join(messages, "; ")
}

// getValidationMessage covers the tags used on ledger and admin requests
func getValidationMessage(fieldErr validator.FieldError) string {
	field := fieldErr.Field()

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
