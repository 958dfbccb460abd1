package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses
const (
	OrderStatusActive    = "active"
	OrderStatusInactive  = "inactive"
	OrderStatusCancelled = "cancelled"
	OrderStatusExpired   = "expired"
)

// Order represents a billing intent for a plan purchase
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	PlanID      primitive.ObjectID `bson:"plan_id" json:"plan_id"`
	Amount      float64            `bson:"amount" json:"amount"`
	Currency    string             `bson:"currency" json:"currency"` // ISO 4217, e.g. "USD"
	Status      string             `bson:"status" json:"status"`
	OrderNumber string             `bson:"order_number" json:"order_number"` // generated, unique
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
