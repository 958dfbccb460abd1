// Package store defines the persistence ports for orders and payments and
// provides the MongoDB implementations used in production.
package store

import (
	"context"

	"fintrack/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStore persists Order documents.
type OrderStore interface {
	// InsertOrder persists the order and returns it with its generated ID set.
	InsertOrder(ctx context.Context, order *models.Order) (*models.Order, error)

	// DeleteOrder removes the order with the given ID. Deleting an ID that
	// no longer exists is not an error.
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error

	FindOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// PaymentStore persists Payment documents.
type PaymentStore interface {
	// InsertPayment persists the payment and returns it with its generated ID set.
	InsertPayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)

	FindPaymentsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error)
	FindPaymentsByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Payment, error)
}

// TxnRunner exposes the storage engine's native multi-document transaction
// support, when it has any.
type TxnRunner interface {
	// Supports reports whether the engine can run multi-document
	// transactions. Implementations may probe once and cache the answer.
	Supports(ctx context.Context) bool

	// WithTransaction runs fn inside a single atomic unit of work. Storage
	// operations performed with the context passed to fn join the
	// transaction. Either every write in fn commits or none do.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
