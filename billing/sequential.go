package billing

import (
	"context"
	"time"

	"fintrack/models"

	"go.uber.org/zap"
)

// compensationTimeout bounds the best-effort order delete. It deliberately
// ignores the caller's deadline: an expired request context must not stop the
// cleanup that keeps the order/payment pairing invariant.
const compensationTimeout = 10 * time.Second

// writeSequential creates the order, then the payment. Any payment-write
// failure triggers the compensating order delete, whatever the cause: from
// the caller's side every such failure must leave no orphaned order behind.
// Only when the delete itself also fails does the caller see a
// KindCompensationFailure instead of the normalized error.
func (c *Coordinator) writeSequential(ctx context.Context, order *models.Order, payment *models.Payment) (*Result, error) {
	persistedOrder, err := c.orders.InsertOrder(ctx, order)
	if err != nil {
		// Nothing to compensate.
		classified := classifyStorageError(err)
		c.logger.Warn("order write failed",
			zap.String("order_number", order.OrderNumber),
			zap.Stringer("kind", classified.Kind),
			zap.Error(err),
		)
		return nil, classified
	}

	p := *payment
	p.OrderID = persistedOrder.ID
	persistedPayment, err := c.payments.InsertPayment(ctx, &p)
	if err != nil {
		return nil, c.compensate(ctx, persistedOrder, err)
	}

	return assembleResult(persistedOrder, persistedPayment)
}

// compensate deletes the order created earlier in the same call and returns
// the error the caller should see. A delete that matches nothing counts as
// success, so retried compensations are no-ops. The deleted order's number is
// never reused; a retried call generates a fresh order.
func (c *Coordinator) compensate(ctx context.Context, orphan *models.Order, paymentErr error) error {
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if delErr := c.orders.DeleteOrder(delCtx, orphan.ID); delErr != nil {
		c.logger.Error("compensation failed, orphaned order left in storage",
			zap.String("order_id", orphan.ID.Hex()),
			zap.String("order_number", orphan.OrderNumber),
			zap.NamedError("payment_error", paymentErr),
			zap.NamedError("delete_error", delErr),
		)
		return compensationFailure(orphan.ID, paymentErr, delErr)
	}

	classified := classifyStorageError(paymentErr)
	c.logger.Warn("payment write failed, order rolled back",
		zap.String("order_id", orphan.ID.Hex()),
		zap.Stringer("kind", classified.Kind),
		zap.Error(paymentErr),
	)
	return classified
}
