// internal/utils/validator.go
package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/balaguruva/admin-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("order_status", validateOrderStatus)
	validate.RegisterValidation("payment_method", validatePaymentMethod)
	validate.RegisterValidation("delivery_method", validateDeliveryMethod)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	return models.OrderStatus(fl.Field().String()).Valid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return models.PaymentMethod(fl.Field().String()).Valid()
}

func validateDeliveryMethod(fl validator.FieldLevel) bool {
	return models.DeliveryMethod(fl.Field().String()).Valid()
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   lowerFirst(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

// IsValidationError reports whether err carries validator failures.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "lte":
		return e.Field() + " must be less than or equal to " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "order_status":
		return "Status must be one of processing, shipped, delivered, cancelled"
	case "payment_method":
		return "Payment method must be one of gateway, cod, upi"
	case "delivery_method":
		return "Delivery method must be one of standard, express"
	default:
		return e.Field() + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// CheckFormFields rejects multipart fields and files outside the allow-list.
func CheckFormFields(form *multipart.Form, allowed ...string) []ValidationError {
	known := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		known[name] = struct{}{}
	}

	var unknown []ValidationError
	check := func(name string) {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, ValidationError{
				Field:   name,
				Tag:     "unknown",
				Message: fmt.Sprintf("%s is not an accepted field", name),
			})
		}
	}
	if form == nil {
		return nil
	}
	for name := range form.Value {
		check(name)
	}
	for name := range form.File {
		check(name)
	}
	return unknown
}
