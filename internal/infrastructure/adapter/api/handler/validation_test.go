package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
)

func TestToValidationErrors(t *testing.T) {
	t.Run("should map every failed rule to a field message", func(t *testing.T) {
		form := dto.RegisterForm{
			FirstName:       "J",
			Email:           "nope",
			Password:        "password123",
			ConfirmPassword: "password124",
		}

		err := binding.Validator.ValidateStruct(&form)
		require.Error(t, err)

		fields := toValidationErrors(err).Fields()
		assert.Equal(t, map[string]string{
			"FirstName":       "First Name must be at least 2 characters.",
			"LastName":        "Last Name is required.",
			"Email":           "Please enter a valid email address.",
			"ConfirmPassword": "Passwords do not match.",
		}, fields)
	})

	t.Run("should report values past the column limits", func(t *testing.T) {
		form := dto.RegisterForm{
			FirstName:       strings.Repeat("a", 101),
			LastName:        "Lovelace",
			Email:           strings.Repeat("a", 250) + "@example.com",
			Password:        strings.Repeat("p", 73),
			ConfirmPassword: strings.Repeat("p", 73),
		}

		err := binding.Validator.ValidateStruct(&form)
		require.Error(t, err)

		assert.Equal(t, map[string]string{
			"FirstName": "First Name must be at most 100 characters.",
			"Email":     "Email must be at most 255 characters.",
			"Password":  "Password must be at most 72 characters.",
		}, toValidationErrors(err).Fields())
	})

	t.Run("should accept values at the column limits", func(t *testing.T) {
		form := dto.RegisterForm{
			FirstName:       strings.Repeat("a", 100),
			LastName:        strings.Repeat("b", 100),
			Email:           "ada@example.com",
			Password:        strings.Repeat("p", 72),
			ConfirmPassword: strings.Repeat("p", 72),
		}
		assert.NoError(t, binding.Validator.ValidateStruct(&form))
	})

	t.Run("should accept a complete login form", func(t *testing.T) {
		form := dto.LoginForm{LoginEmail: "a@b.co", LoginPassword: "x"}
		assert.NoError(t, binding.Validator.ValidateStruct(&form))
	})

	t.Run("should key non-validation failures on the form", func(t *testing.T) {
		verrs := toValidationErrors(errors.New("malformed body"))

		require.Len(t, verrs, 1)
		assert.Equal(t, formErrorField, verrs[0].Field)
		assert.Equal(t, errs.CodeValidation, errs.ErrorCode(verrs))
	})
}

func TestFormNormalizeAndRedact(t *testing.T) {
	form := dto.RegisterForm{
		FirstName:       "  Ada ",
		LastName:        " Lovelace",
		Email:           " ada@example.com ",
		Password:        "secret-pass",
		ConfirmPassword: "secret-pass",
	}

	form.Normalize()
	redacted := form.Redacted()

	assert.Equal(t, "Ada", redacted.FirstName)
	assert.Equal(t, "Lovelace", redacted.LastName)
	assert.Equal(t, "ada@example.com", redacted.Email)
	assert.Empty(t, redacted.Password)
	assert.Empty(t, redacted.ConfirmPassword)
	assert.Equal(t, "secret-pass", form.Password, "redaction must not touch the original")
}
