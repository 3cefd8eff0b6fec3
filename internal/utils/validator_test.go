package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balaguruva/admin-backend/internal/models"
)

type statusRequest struct {
	Status   models.OrderStatus    `validate:"required,order_status"`
	Delivery models.DeliveryMethod `validate:"omitempty,delivery_method"`
}

func TestCustomValidators(t *testing.T) {
	assert.NoError(t, ValidateStruct(&statusRequest{Status: models.OrderStatusShipped}))

	err := ValidateStruct(&statusRequest{Status: "lost", Delivery: "drone"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	fields := map[string]string{}
	for _, ve := range GetValidationErrors(err) {
		fields[ve.Field] = ve.Tag
	}
	assert.Equal(t, map[string]string{"status": "order_status", "delivery": "delivery_method"}, fields)
}

func TestGetValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, GetValidationErrors(nil))
	assert.False(t, IsValidationError(assert.AnError))
}
