package billing

import (
	"fmt"

	"fintrack/models"
)

// Result packages the two persisted documents returned on success.
type Result struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment"`
}

// assembleResult packages the persisted pair. It defensively re-checks the
// amount/currency pairing: a mismatch here means a bug upstream, surfaced as
// a permanent error so callers never retry it.
func assembleResult(order *models.Order, payment *models.Payment) (*Result, error) {
	if order == nil || payment == nil {
		return nil, &ClassifiedError{
			Kind:  KindPermanentStorage,
			cause: fmt.Errorf("assemble: missing persisted document (order=%v payment=%v)", order != nil, payment != nil),
		}
	}
	if order.Amount != payment.Amount || order.Currency != payment.Currency {
		return nil, &ClassifiedError{
			Kind: KindPermanentStorage,
			cause: fmt.Errorf("assemble: order %s (%.2f %s) does not match payment %s (%.2f %s)",
				order.ID.Hex(), order.Amount, order.Currency,
				payment.ID.Hex(), payment.Amount, payment.Currency),
		}
	}
	return &Result{Order: order, Payment: payment}, nil
}
