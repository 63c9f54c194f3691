package cardhandler

import (
	"errors"
	"testing"

	"github.com/fazamuttaqien/cards/internal/dto"
	"github.com/fazamuttaqien/cards/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidMobileNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"ten digits", "4354437687", true},
		{"empty", "", true},
		{"nine digits", "435443768", false},
		{"eleven digits", "43544376871", false},
		{"letters", "43544376ab", false},
		{"leading plus", "+435443768", false},
		{"spaces", "4354 37687", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidMobileNumber(tt.input))
		})
	}
}

func TestValidationMessage_UsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Struct(dto.CardsDto{
		MobileNumber:    "4354437687",
		CardNumber:      "100646930341",
		CardType:        "",
		TotalLimit:      0,
		AmountUsed:      -1,
		AvailableAmount: 0,
	})
	require.Error(t, err)

	msg := validationMessage(err)
	assert.Contains(t, msg, "cardType can not be a null or empty")
	assert.Contains(t, msg, "totalLimit should be greater than zero")
	assert.Contains(t, msg, "amountUsed should be equal or greater than zero")
	assert.NotContains(t, msg, "availableAmount")
}

func TestValidator_MobileTagOnVar(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Var("", "mobile"))
	assert.NoError(t, v.Var("0123456789", "mobile"))
	assert.Error(t, v.Var("012345678", "mobile"))
}

func TestValidator_CardNumberDigitsOnly(t *testing.T) {
	v := NewValidator()
	base := dto.CardsDto{
		MobileNumber:    "4354437687",
		CardType:        "Credit Card",
		TotalLimit:      100000,
		AmountUsed:      0,
		AvailableAmount: 100000,
	}

	tests := []struct {
		name       string
		cardNumber string
		valid      bool
	}{
		{"twelve digits", "100646930341", true},
		{"leading minus", "-10064693034", false},
		{"leading plus", "+10064693034", false},
		{"decimal point", "1006469303.1", false},
		{"eleven digits", "10064693034", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.CardNumber = tt.cardNumber

			err := v.Struct(req)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, "cardNumber must be 12 digits", validationMessage(err))
		})
	}
}

func TestCheckMobileNumber(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, checkMobileNumber(v, "4354437687"))
	assert.NoError(t, checkMobileNumber(v, ""))

	err := checkMobileNumber(v, "123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidMobile))
	assert.Contains(t, err.Error(), `"123"`)
}
