package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses
const (
	PaymentStatusPending           = "pending"
	PaymentStatusSucceeded         = "succeeded"
	PaymentStatusFailed            = "failed"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
	PaymentStatusRequiresAction    = "requires_action"
	PaymentStatusCanceled          = "canceled"
)

// Payment purposes
const (
	PaymentPurposeSubscriptionInitial = "subscription_initial"
	PaymentPurposePlanUpgrade         = "plan_upgrade"
	PaymentPurposeManual              = "manual_payment"
	PaymentPurposeRefund              = "refund"
)

// Payment represents the monetary transaction backing an Order.
// Amount and currency must match the Order at creation time.
type Payment struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID              primitive.ObjectID `bson:"order_id" json:"order_id"`
	UserID               primitive.ObjectID `bson:"user_id" json:"user_id"`
	PlanID               primitive.ObjectID `bson:"plan_id" json:"plan_id"`
	Amount               float64            `bson:"amount" json:"amount"`
	Currency             string             `bson:"currency" json:"currency"`
	PaymentGateway       string             `bson:"payment_gateway" json:"payment_gateway"` // e.g. "stripe", "manual"
	Purpose              string             `bson:"purpose" json:"purpose"`
	TransactionID        string             `bson:"transaction_id" json:"transaction_id"`
	PaymentMethodDetails string             `bson:"payment_method_details,omitempty" json:"payment_method_details,omitempty"`
	Status               string             `bson:"status" json:"status"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
}
