package handler

import (
	"errors"
	"fmt"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// formErrorField keys messages that belong to no single field
const formErrorField = "Form"

// formBinding reads url-encoded POST bodies only
var formBinding = binding.FormPost

var fieldLabels = map[string]string{
	"FirstName":       "First Name",
	"LastName":        "Last Name",
	"Email":           "Email",
	"Password":        "Password",
	"ConfirmPassword": "Confirm Password",
	"LoginEmail":      "Email",
	"LoginPassword":   "Password",
}

// normalizer is implemented by forms that trim their input
type normalizer interface {
	Normalize()
}

// bindForm binds the posted form into obj, normalizes it and then validates it,
// so whitespace-only values fail the same rules as empty ones
func bindForm(c *gin.Context, obj normalizer) error {
	if err := c.ShouldBindWith(obj, formBinding); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
	}
	obj.Normalize()
	return binding.Validator.ValidateStruct(obj)
}

// toValidationErrors maps binding failures to per-field messages
func toValidationErrors(err error) errs.ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.ValidationErrors{
			errs.NewFieldError(formErrorField, "Invalid submission.", err),
		}
	}

	out := make(errs.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, errs.NewFieldError(fe.Field(), fieldMessage(fe), nil))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "email":
		return "Please enter a valid email address."
	case "eqfield":
		return "Passwords do not match."
	default:
		return label + " is invalid."
	}
}
