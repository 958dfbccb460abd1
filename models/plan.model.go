package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan represents a billable subscription plan
type Plan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Currency    string             `bson:"currency" json:"currency"`
	Interval    string             `bson:"interval" json:"interval"` // "month" or "year"
	Active      bool               `bson:"active" json:"active"`
}
