package validator

import (
	"errors"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string  `json:"name" validate:"notblank"`
	Currency string  `json:"currency" validate:"currency"`
	Amount   float64 `json:"amount" validate:"gte=0"`
}

func TestValidate(t *testing.T) {
	v, err := NewDefaultValidator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(sample{Name: "Sofa", Currency: "USD", Amount: 10}))

	err = v.Validate(sample{Name: "  ", Currency: "usd", Amount: -1})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	var verrs govalidator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 3)

	got := map[string]string{}
	for _, fe := range verrs {
		got[fe.Field()] = ValidationErrorMessage(fe)
	}
	assert.Equal(t, "must not be blank", got["name"])
	assert.Equal(t, "must be a three letter ISO currency code", got["currency"])
	assert.Equal(t, "must be greater than or equal to 0", got["amount"])
}
