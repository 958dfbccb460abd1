package billing

import (
	"testing"

	"fintrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func persistedPair() (*models.Order, *models.Payment) {
	order := &models.Order{
		ID:       primitive.NewObjectID(),
		Amount:   49.99,
		Currency: "USD",
	}
	payment := &models.Payment{
		ID:       primitive.NewObjectID(),
		OrderID:  order.ID,
		Amount:   49.99,
		Currency: "USD",
	}
	return order, payment
}

func TestAssembleResult(t *testing.T) {
	order, payment := persistedPair()

	result, err := assembleResult(order, payment)
	require.NoError(t, err)
	assert.Same(t, order, result.Order)
	assert.Same(t, payment, result.Payment)
}

func TestAssembleResultRejectsAmountMismatch(t *testing.T) {
	order, payment := persistedPair()
	payment.Amount = 50.00

	_, err := assembleResult(order, payment)
	require.Error(t, err)
	// A mismatch that survived both writes is a bug, not a storage fault:
	// permanent so callers never retry it.
	assert.True(t, IsKind(err, KindPermanentStorage))
}

func TestAssembleResultRejectsCurrencyMismatch(t *testing.T) {
	order, payment := persistedPair()
	payment.Currency = "EUR"

	_, err := assembleResult(order, payment)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindPermanentStorage))
}

func TestAssembleResultRejectsMissingDocuments(t *testing.T) {
	order, payment := persistedPair()

	_, err := assembleResult(nil, payment)
	assert.True(t, IsKind(err, KindPermanentStorage))

	_, err = assembleResult(order, nil)
	assert.True(t, IsKind(err, KindPermanentStorage))
}
