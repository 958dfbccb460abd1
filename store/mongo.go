package store

import (
	"context"
	"sync"
	"time"

	"fintrack/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrderStore implements OrderStore over a MongoDB collection.
type MongoOrderStore struct {
	Collection *mongo.Collection
}

// NewMongoOrderStore creates an order store over the "orders" collection.
func NewMongoOrderStore(client *mongo.Client, database string) *MongoOrderStore {
	return &MongoOrderStore{Collection: client.Database(database).Collection("orders")}
}

// EnsureIndexes creates the unique index on order_number.
func (s *MongoOrderStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoOrderStore) InsertOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	result, err := s.Collection.InsertOne(ctx, order)
	if err != nil {
		return nil, err
	}
	persisted := *order
	persisted.ID = result.InsertedID.(primitive.ObjectID)
	return &persisted, nil
}

func (s *MongoOrderStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	// DeleteOne matching nothing is a no-op, which is exactly the
	// idempotency the compensation path relies on.
	_, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoOrderStore) FindOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cursor, err := s.Collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MongoOrderStore) FindOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoOrderStore) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MongoPaymentStore implements PaymentStore over a MongoDB collection.
type MongoPaymentStore struct {
	Collection *mongo.Collection
}

// NewMongoPaymentStore creates a payment store over the "payments" collection.
func NewMongoPaymentStore(client *mongo.Client, database string) *MongoPaymentStore {
	return &MongoPaymentStore{Collection: client.Database(database).Collection("payments")}
}

func (s *MongoPaymentStore) InsertPayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	result, err := s.Collection.InsertOne(ctx, payment)
	if err != nil {
		return nil, err
	}
	persisted := *payment
	persisted.ID = result.InsertedID.(primitive.ObjectID)
	return &persisted, nil
}

func (s *MongoPaymentStore) FindPaymentsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	return s.findPayments(ctx, bson.M{"user_id": userID})
}

func (s *MongoPaymentStore) FindPaymentsByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Payment, error) {
	return s.findPayments(ctx, bson.M{"order_id": orderID})
}

func (s *MongoPaymentStore) findPayments(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	cursor, err := s.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// MongoTxnRunner implements TxnRunner over MongoDB sessions. Multi-document
// transactions require a replica set or mongos; a standalone mongod rejects
// them, so Supports probes the deployment topology once and caches the answer.
type MongoTxnRunner struct {
	Client *mongo.Client

	probeOnce sync.Once
	supported bool
}

// NewMongoTxnRunner creates a transaction runner bound to the client.
func NewMongoTxnRunner(client *mongo.Client) *MongoTxnRunner {
	return &MongoTxnRunner{Client: client}
}

// Supports reports whether the connected deployment can run multi-document
// transactions. The probe runs a single "hello" handshake command; a reply
// naming a replica set (setName) or a mongos (msg "isdbgrid") means
// transactions are available. Any probe error reports unsupported — the
// sequential path is always safe to take.
func (r *MongoTxnRunner) Supports(ctx context.Context) bool {
	r.probeOnce.Do(func() {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		var reply struct {
			SetName string `bson:"setName"`
			Msg     string `bson:"msg"`
		}
		err := r.Client.Database("admin").RunCommand(probeCtx, bson.D{{Key: "hello", Value: 1}}).Decode(&reply)
		if err != nil {
			return
		}
		r.supported = reply.SetName != "" || reply.Msg == "isdbgrid"
	})
	return r.supported
}

// WithTransaction runs fn inside one MongoDB transaction. The session context
// handed to fn carries the transaction, so store calls made with it join the
// same atomic unit.
func (r *MongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
