package billing

import (
	"context"

	"fintrack/models"

	"go.uber.org/zap"
)

// writeTransactional creates both documents inside one native transaction.
// The engine guarantees no partial state on abort, so there is no
// compensation logic here. Errors come back classified; transient ones are
// retried by the caller with freshly generated documents.
func (c *Coordinator) writeTransactional(ctx context.Context, order *models.Order, payment *models.Payment) (*Result, error) {
	var persistedOrder *models.Order
	var persistedPayment *models.Payment

	err := c.txn.WithTransaction(ctx, func(txCtx context.Context) error {
		o, err := c.orders.InsertOrder(txCtx, order)
		if err != nil {
			return err
		}
		p := *payment
		p.OrderID = o.ID
		persisted, err := c.payments.InsertPayment(txCtx, &p)
		if err != nil {
			return err
		}
		persistedOrder = o
		persistedPayment = persisted
		return nil
	})
	if err != nil {
		classified := classifyStorageError(err)
		c.logger.Warn("transactional order+payment write aborted",
			zap.String("order_number", order.OrderNumber),
			zap.Stringer("kind", classified.Kind),
			zap.Error(err),
		)
		return nil, classified
	}

	return assembleResult(persistedOrder, persistedPayment)
}
