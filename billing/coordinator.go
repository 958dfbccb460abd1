// Package billing coordinates the creation of an Order and its backing
// Payment as one logically-atomic unit. When the storage engine supports
// multi-document transactions both writes share one native transaction;
// otherwise the writes run sequentially with a compensating order delete on
// payment failure, so the caller never observes an orphaned document pair.
package billing

import (
	"context"
	"strings"
	"time"

	"fintrack/models"
	"fintrack/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Transient transactional aborts are retried with fresh identifiers before
// the failure is surfaced.
const (
	maxTransactionalAttempts = 3
	retryBackoff             = 50 * time.Millisecond
)

// Coordinator owns the paired order+payment write. Stores and the
// transaction runner are injected at construction, never resolved from
// ambient state; tests substitute in-memory implementations the same way.
type Coordinator struct {
	orders   store.OrderStore
	payments store.PaymentStore
	txn      store.TxnRunner
	logger   *zap.Logger
}

// NewCoordinator wires a coordinator around the given stores. txn may be nil
// when the deployment has no transaction support at all; every call then
// takes the sequential path. A nil logger disables logging.
func NewCoordinator(orders store.OrderStore, payments store.PaymentStore, txn store.TxnRunner, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{orders: orders, payments: payments, txn: txn, logger: logger}
}

// OrderInput is the caller-supplied data for the Order document.
type OrderInput struct {
	UserID   primitive.ObjectID
	PlanID   primitive.ObjectID
	Amount   float64
	Currency string
}

// PaymentInput is the caller-supplied data for the Payment document.
type PaymentInput struct {
	UserID               primitive.ObjectID
	PlanID               primitive.ObjectID
	Amount               float64
	Currency             string
	Gateway              string
	Purpose              string
	PaymentMethodDetails string
}

// CreateOrderWithPayment creates one Order and its Payment. On success both
// documents are persisted and returned; on failure neither survives, except
// for the loud KindCompensationFailure case where the rollback itself failed.
// Every returned error is a *ClassifiedError; all kinds except compensation
// failure share the fixed PublicMessage.
func (c *Coordinator) CreateOrderWithPayment(ctx context.Context, orderIn OrderInput, paymentIn PaymentInput, opts Options) (*Result, error) {
	if err := validateInputs(orderIn, paymentIn); err != nil {
		c.logger.Warn("order+payment creation rejected", zap.Error(err.Unwrap()))
		return nil, err
	}

	strategy := c.selectStrategy(ctx, opts)

	if strategy == StrategySequential {
		order, payment := buildDocuments(orderIn, paymentIn)
		return c.writeSequential(ctx, order, payment)
	}

	// Transactional path. Each attempt gets freshly generated identifiers
	// so a retry after an ambiguous commit cannot collide on the unique
	// order number.
	var lastErr error
	for attempt := 1; attempt <= maxTransactionalAttempts; attempt++ {
		order, payment := buildDocuments(orderIn, paymentIn)
		result, err := c.writeTransactional(ctx, order, payment)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsKind(err, KindTransientStorage) || attempt == maxTransactionalAttempts {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * retryBackoff):
		case <-ctx.Done():
			return nil, classifyStorageError(ctx.Err())
		}
	}
	return nil, classifyStorageError(lastErr)
}

// validateInputs rejects structurally invalid data before any write is
// attempted.
func validateInputs(orderIn OrderInput, paymentIn PaymentInput) *ClassifiedError {
	switch {
	case orderIn.UserID.IsZero():
		return validationError("order user reference is required")
	case orderIn.PlanID.IsZero():
		return validationError("order plan reference is required")
	case orderIn.Amount <= 0:
		return validationError("order amount must be positive, got %v", orderIn.Amount)
	case len(orderIn.Currency) != 3:
		return validationError("order currency must be a 3-letter code, got %q", orderIn.Currency)
	case paymentIn.UserID != orderIn.UserID:
		return validationError("payment user does not match order user")
	case paymentIn.PlanID != orderIn.PlanID:
		return validationError("payment plan does not match order plan")
	case paymentIn.Amount != orderIn.Amount:
		return validationError("payment amount %v does not match order amount %v", paymentIn.Amount, orderIn.Amount)
	case !strings.EqualFold(paymentIn.Currency, orderIn.Currency):
		return validationError("payment currency %q does not match order currency %q", paymentIn.Currency, orderIn.Currency)
	case paymentIn.Gateway == "":
		return validationError("payment gateway is required")
	case paymentIn.Purpose == "":
		return validationError("payment purpose is required")
	}
	return nil
}

// buildDocuments materializes the two documents for one write attempt.
// Called once per attempt: identifiers are never reused across attempts or
// after a compensated failure.
func buildDocuments(orderIn OrderInput, paymentIn PaymentInput) (*models.Order, *models.Payment) {
	now := time.Now().UTC()
	order := &models.Order{
		UserID:      orderIn.UserID,
		PlanID:      orderIn.PlanID,
		Amount:      orderIn.Amount,
		Currency:    strings.ToUpper(orderIn.Currency),
		Status:      models.OrderStatusActive,
		OrderNumber: newOrderNumber(),
		CreatedAt:   now,
	}
	payment := &models.Payment{
		UserID:               paymentIn.UserID,
		PlanID:               paymentIn.PlanID,
		Amount:               paymentIn.Amount,
		Currency:             strings.ToUpper(paymentIn.Currency),
		PaymentGateway:       paymentIn.Gateway,
		Purpose:              paymentIn.Purpose,
		TransactionID:        "txn_" + uuid.NewString(),
		PaymentMethodDetails: paymentIn.PaymentMethodDetails,
		Status:               models.PaymentStatusPending,
		CreatedAt:            now,
	}
	return order, payment
}

// newOrderNumber generates a unique human-readable order number.
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString())
}
