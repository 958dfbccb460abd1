package store

import (
	"context"
	"sync"

	"fintrack/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MemoryOrderStore is an in-memory OrderStore for tests and deployments
// without persistence. Failure injection hooks let tests force individual
// operations to fail.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]models.Order

	// InsertErr, when set, fails every InsertOrder with that error.
	InsertErr error
	// DeleteErr, when set, fails every DeleteOrder with that error.
	DeleteErr error

	DeleteCalls int
}

// NewMemoryOrderStore creates an empty in-memory order store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[primitive.ObjectID]models.Order)}
}

func (s *MemoryOrderStore) InsertOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InsertErr != nil {
		return nil, s.InsertErr
	}

	persisted := *order
	persisted.ID = primitive.NewObjectID()
	s.orders[persisted.ID] = persisted
	return &persisted, nil
}

func (s *MemoryOrderStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DeleteCalls++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	// Absent ID is a no-op, matching DeleteOne semantics.
	delete(s.orders, id)
	return nil
}

func (s *MemoryOrderStore) FindOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (s *MemoryOrderStore) FindOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &order, nil
}

func (s *MemoryOrderStore) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	order.Status = status
	s.orders[id] = order
	return nil
}

// Count reports the number of stored orders.
func (s *MemoryOrderStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// MemoryPaymentStore is an in-memory PaymentStore for tests.
type MemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[primitive.ObjectID]models.Payment

	// InsertErr, when set, fails every InsertPayment with that error.
	InsertErr error

	InsertCalls int
}

// NewMemoryPaymentStore creates an empty in-memory payment store.
func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{payments: make(map[primitive.ObjectID]models.Payment)}
}

func (s *MemoryPaymentStore) InsertPayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.InsertCalls++
	if s.InsertErr != nil {
		return nil, s.InsertErr
	}

	persisted := *payment
	persisted.ID = primitive.NewObjectID()
	s.payments[persisted.ID] = persisted
	return &persisted, nil
}

func (s *MemoryPaymentStore) FindPaymentsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payments []models.Payment
	for _, payment := range s.payments {
		if payment.UserID == userID {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

func (s *MemoryPaymentStore) FindPaymentsByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payments []models.Payment
	for _, payment := range s.payments {
		if payment.OrderID == orderID {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

// Count reports the number of stored payments.
func (s *MemoryPaymentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}

// MemoryTxnRunner is a TxnRunner over the in-memory stores. It snapshots both
// stores before running fn and restores them if fn fails, giving tests the
// same commit-or-nothing contract the Mongo runner gets from the engine.
type MemoryTxnRunner struct {
	Orders   *MemoryOrderStore
	Payments *MemoryPaymentStore

	// Supported is what Supports reports; tests flip it to steer the
	// strategy selection.
	Supported bool
}

// NewMemoryTxnRunner creates a runner that reports transaction support.
func NewMemoryTxnRunner(orders *MemoryOrderStore, payments *MemoryPaymentStore) *MemoryTxnRunner {
	return &MemoryTxnRunner{Orders: orders, Payments: payments, Supported: true}
}

func (r *MemoryTxnRunner) Supports(ctx context.Context) bool {
	return r.Supported
}

func (r *MemoryTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.Orders.mu.Lock()
	orderSnapshot := make(map[primitive.ObjectID]models.Order, len(r.Orders.orders))
	for id, order := range r.Orders.orders {
		orderSnapshot[id] = order
	}
	r.Orders.mu.Unlock()

	r.Payments.mu.Lock()
	paymentSnapshot := make(map[primitive.ObjectID]models.Payment, len(r.Payments.payments))
	for id, payment := range r.Payments.payments {
		paymentSnapshot[id] = payment
	}
	r.Payments.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.Orders.mu.Lock()
		r.Orders.orders = orderSnapshot
		r.Orders.mu.Unlock()

		r.Payments.mu.Lock()
		r.Payments.payments = paymentSnapshot
		r.Payments.mu.Unlock()
		return err
	}
	return nil
}
