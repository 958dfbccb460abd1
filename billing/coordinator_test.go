package billing

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"fintrack/models"
	"fintrack/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var publicMessageRe = regexp.MustCompile(`(?i)failed to create order and payment`)

type fixture struct {
	orders   *store.MemoryOrderStore
	payments *store.MemoryPaymentStore
	txn      *store.MemoryTxnRunner
	coord    *Coordinator
}

func newFixture() *fixture {
	orders := store.NewMemoryOrderStore()
	payments := store.NewMemoryPaymentStore()
	txn := store.NewMemoryTxnRunner(orders, payments)
	return &fixture{
		orders:   orders,
		payments: payments,
		txn:      txn,
		coord:    NewCoordinator(orders, payments, txn, nil),
	}
}

func validInputs() (OrderInput, PaymentInput) {
	userID := primitive.NewObjectID()
	planID := primitive.NewObjectID()
	orderIn := OrderInput{
		UserID:   userID,
		PlanID:   planID,
		Amount:   99,
		Currency: "USD",
	}
	paymentIn := PaymentInput{
		UserID:               userID,
		PlanID:               planID,
		Amount:               99,
		Currency:             "USD",
		Gateway:              "manual",
		Purpose:              models.PaymentPurposeSubscriptionInitial,
		PaymentMethodDetails: "details",
	}
	return orderIn, paymentIn
}

func TestCreateOrderWithPaymentSequentialHappyPath(t *testing.T) {
	f := newFixture()
	orderIn, paymentIn := validInputs()

	result, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{ForceSequential: true})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	require.NotNil(t, result.Payment)

	assert.Equal(t, 1, f.orders.Count())
	assert.Equal(t, 1, f.payments.Count())

	assert.False(t, result.Order.ID.IsZero())
	assert.False(t, result.Payment.ID.IsZero())
	assert.Equal(t, result.Order.ID, result.Payment.OrderID)
	assert.Equal(t, models.OrderStatusActive, result.Order.Status)
	assert.Equal(t, models.PaymentStatusPending, result.Payment.Status)
	assert.Regexp(t, `^ORD-`, result.Order.OrderNumber)
	assert.NotEmpty(t, result.Payment.TransactionID)
	assert.Equal(t, orderIn.Amount, result.Order.Amount)
	assert.Equal(t, orderIn.Amount, result.Payment.Amount)
	assert.Equal(t, "USD", result.Payment.Currency)
	assert.False(t, result.Order.CreatedAt.IsZero())
}

func TestCreateOrderWithPaymentCompensatesOnPaymentFailure(t *testing.T) {
	f := newFixture()
	f.payments.InsertErr = errors.New("forced save error")
	orderIn, paymentIn := validInputs()

	result, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{ForceSequential: true})
	require.Error(t, err)
	assert.Nil(t, result)

	// Compensation removed the order: no document of either kind survives.
	assert.Equal(t, 0, f.orders.Count())
	assert.Equal(t, 0, f.payments.Count())
	assert.Equal(t, 1, f.orders.DeleteCalls)

	assert.Regexp(t, publicMessageRe, err.Error())
	assert.True(t, IsKind(err, KindPermanentStorage))
}

func TestCreateOrderWithPaymentNoPaymentAttemptOnOrderFailure(t *testing.T) {
	f := newFixture()
	f.orders.InsertErr = errors.New("order insert refused")
	orderIn, paymentIn := validInputs()

	_, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{ForceSequential: true})
	require.Error(t, err)

	// The payment side must be untouched.
	assert.Equal(t, 0, f.payments.InsertCalls)
	assert.Equal(t, 0, f.orders.DeleteCalls)
	assert.Regexp(t, publicMessageRe, err.Error())
}

func TestCreateOrderWithPaymentCompensationFailureIsLoud(t *testing.T) {
	f := newFixture()
	f.payments.InsertErr = errors.New("forced save error")
	f.orders.DeleteErr = errors.New("delete refused")
	orderIn, paymentIn := validInputs()

	_, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{ForceSequential: true})
	require.Error(t, err)

	var classified *ClassifiedError
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindCompensationFailure, classified.Kind)
	assert.False(t, classified.OrphanOrderID.IsZero())
	assert.Contains(t, err.Error(), "orphaned order")
	assert.Contains(t, err.Error(), classified.OrphanOrderID.Hex())

	// The orphan is known to remain in storage.
	assert.Equal(t, 1, f.orders.Count())
	assert.Equal(t, 0, f.payments.Count())
}

func TestCreateOrderWithPaymentTransactionalHappyPath(t *testing.T) {
	f := newFixture()
	orderIn, paymentIn := validInputs()

	result, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.orders.Count())
	assert.Equal(t, 1, f.payments.Count())
	assert.Equal(t, result.Order.ID, result.Payment.OrderID)
}

func TestCreateOrderWithPaymentTransactionalRollsBackAtomically(t *testing.T) {
	f := newFixture()
	f.payments.InsertErr = errors.New("forced save error")
	orderIn, paymentIn := validInputs()

	_, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{})
	require.Error(t, err)

	// The engine rolled back: no compensation delete was involved.
	assert.Equal(t, 0, f.orders.Count())
	assert.Equal(t, 0, f.payments.Count())
	assert.Equal(t, 0, f.orders.DeleteCalls)
	assert.Regexp(t, publicMessageRe, err.Error())
}

func TestCreateOrderWithPaymentRetriesTransientTransactionalErrors(t *testing.T) {
	f := newFixture()
	f.payments.InsertErr = context.DeadlineExceeded // classified transient
	orderIn, paymentIn := validInputs()

	_, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{})
	require.Error(t, err)

	assert.True(t, IsKind(err, KindTransientStorage))
	assert.Equal(t, maxTransactionalAttempts, f.payments.InsertCalls)
}

func TestCreateOrderWithPaymentDoesNotRetryPermanentErrors(t *testing.T) {
	f := newFixture()
	f.payments.InsertErr = errors.New("constraint violation")
	orderIn, paymentIn := validInputs()

	_, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{})
	require.Error(t, err)

	assert.True(t, IsKind(err, KindPermanentStorage))
	assert.Equal(t, 1, f.payments.InsertCalls)
}

func TestCreateOrderWithPaymentStrategiesProduceEquivalentResults(t *testing.T) {
	orderIn, paymentIn := validInputs()

	seq := newFixture()
	seqResult, err := seq.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{ForceSequential: true})
	require.NoError(t, err)

	txn := newFixture()
	txnResult, err := txn.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{})
	require.NoError(t, err)

	for _, result := range []*Result{seqResult, txnResult} {
		assert.False(t, result.Order.ID.IsZero())
		assert.Equal(t, result.Order.ID, result.Payment.OrderID)
		assert.Equal(t, result.Order.Amount, result.Payment.Amount)
		assert.Equal(t, result.Order.Currency, result.Payment.Currency)
		assert.Equal(t, models.OrderStatusActive, result.Order.Status)
		assert.Equal(t, models.PaymentStatusPending, result.Payment.Status)
	}
	// Identifiers are generated per call, never shared across attempts.
	assert.NotEqual(t, seqResult.Order.OrderNumber, txnResult.Order.OrderNumber)
	assert.NotEqual(t, seqResult.Payment.TransactionID, txnResult.Payment.TransactionID)
}

func TestCreateOrderWithPaymentFallsBackWhenTransactionsUnsupported(t *testing.T) {
	f := newFixture()
	f.txn.Supported = false
	f.payments.InsertErr = errors.New("forced save error")
	orderIn, paymentIn := validInputs()

	_, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{})
	require.Error(t, err)

	// Sequential path ran: the failed payment triggered a compensating delete.
	assert.Equal(t, 1, f.orders.DeleteCalls)
	assert.Equal(t, 0, f.orders.Count())
}

func TestCreateOrderWithPaymentNilRunnerTakesSequentialPath(t *testing.T) {
	orders := store.NewMemoryOrderStore()
	payments := store.NewMemoryPaymentStore()
	coord := NewCoordinator(orders, payments, nil, nil)
	orderIn, paymentIn := validInputs()

	result, err := coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{})
	require.NoError(t, err)
	assert.Equal(t, result.Order.ID, result.Payment.OrderID)
}

func TestCreateOrderWithPaymentValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *OrderInput, p *PaymentInput)
	}{
		{"missing user", func(o *OrderInput, p *PaymentInput) { o.UserID = primitive.NilObjectID }},
		{"missing plan", func(o *OrderInput, p *PaymentInput) { o.PlanID = primitive.NilObjectID }},
		{"zero amount", func(o *OrderInput, p *PaymentInput) { o.Amount = 0; p.Amount = 0 }},
		{"negative amount", func(o *OrderInput, p *PaymentInput) { o.Amount = -5; p.Amount = -5 }},
		{"bad currency", func(o *OrderInput, p *PaymentInput) { o.Currency = "US"; p.Currency = "US" }},
		{"amount mismatch", func(o *OrderInput, p *PaymentInput) { p.Amount = 100 }},
		{"currency mismatch", func(o *OrderInput, p *PaymentInput) { p.Currency = "EUR" }},
		{"user mismatch", func(o *OrderInput, p *PaymentInput) { p.UserID = primitive.NewObjectID() }},
		{"missing gateway", func(o *OrderInput, p *PaymentInput) { p.Gateway = "" }},
		{"missing purpose", func(o *OrderInput, p *PaymentInput) { p.Purpose = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			orderIn, paymentIn := validInputs()
			tt.mutate(&orderIn, &paymentIn)

			_, err := f.coord.CreateOrderWithPayment(context.Background(), orderIn, paymentIn, Options{ForceSequential: true})
			require.Error(t, err)
			assert.True(t, IsKind(err, KindValidation), "want validation error, got %v", err)

			// Rejected before any write.
			assert.Equal(t, 0, f.orders.Count())
			assert.Equal(t, 0, f.payments.InsertCalls)
		})
	}
}

func TestSelectStrategy(t *testing.T) {
	f := newFixture()

	assert.Equal(t, StrategyTransactional, f.coord.selectStrategy(context.Background(), Options{}))
	assert.Equal(t, StrategySequential, f.coord.selectStrategy(context.Background(), Options{ForceSequential: true}))

	f.txn.Supported = false
	assert.Equal(t, StrategySequential, f.coord.selectStrategy(context.Background(), Options{}))
}
