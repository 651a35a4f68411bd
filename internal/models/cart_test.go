package models_test

import (
	"testing"

	"mandale/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCartAddMergesLines(t *testing.T) {
	cart := models.Cart{}.Add("p-1", 1).Add("p-2", 2).Add("p-1", 3)

	assert.Equal(t, []models.CartItem{
		{ProductID: "p-1", Quantity: 4},
		{ProductID: "p-2", Quantity: 2},
	}, cart.Items)
	assert.Equal(t, 6, cart.Count())
}

func TestCartOperationsDoNotMutateReceiver(t *testing.T) {
	original := models.Cart{}.Add("p-1", 1)

	_ = original.Add("p-1", 5)
	_ = original.SetQuantity("p-1", 9)
	_ = original.Remove("p-1")

	assert.Equal(t, []models.CartItem{{ProductID: "p-1", Quantity: 1}}, original.Items)
}

func TestCartSetQuantity(t *testing.T) {
	cart := models.Cart{}.Add("p-1", 1).Add("p-2", 1)

	updated := cart.SetQuantity("p-2", 5)
	assert.Equal(t, 6, updated.Count())

	removed := cart.SetQuantity("p-1", 0)
	assert.Equal(t, []models.CartItem{{ProductID: "p-2", Quantity: 1}}, removed.Items)
}

func TestCartAddIgnoresNonPositiveQuantity(t *testing.T) {
	cart := models.Cart{}.Add("p-1", 0).Add("p-2", -2)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.Count())
}
