// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fintrack/billing"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/store"
	"fintrack/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// OrderController handles checkout and order-related requests
type OrderController struct {
	UserCollection *mongo.Collection
	PlanCollection *mongo.Collection
	Orders         store.OrderStore
	Coordinator    *billing.Coordinator
	EmailService   *utils.EmailService
	Logger         *zap.Logger

	// ForceSequential makes every checkout take the sequential write path,
	// for deployments known to lack transaction support.
	ForceSequential bool
}

// NewOrderController creates a new OrderController
func NewOrderController(client *mongo.Client, orders store.OrderStore, coordinator *billing.Coordinator, emailService *utils.EmailService, logger *zap.Logger, forceSequential bool) *OrderController {
	return &OrderController{
		UserCollection:  client.Database(utils.DatabaseName).Collection("users"),
		PlanCollection:  client.Database(utils.DatabaseName).Collection("plans"),
		Orders:          orders,
		Coordinator:     coordinator,
		EmailService:    emailService,
		Logger:          logger,
		ForceSequential: forceSequential,
	}
}

// Checkout creates an order and its payment for the selected plan
func (oc *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Find the user in the database
	var user models.User
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := oc.UserCollection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var checkoutRequest struct {
		PlanID               string `json:"plan_id"`
		PaymentGateway       string `json:"payment_gateway"`
		Purpose              string `json:"purpose"`
		PaymentMethodDetails string `json:"payment_method_details"`
	}
	err = json.NewDecoder(r.Body).Decode(&checkoutRequest)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	planID, err := primitive.ObjectIDFromHex(checkoutRequest.PlanID)
	if err != nil {
		http.Error(w, "Invalid plan ID", http.StatusBadRequest)
		return
	}

	var plan models.Plan
	err = oc.PlanCollection.FindOne(ctx, bson.M{"_id": planID}).Decode(&plan)
	if err != nil {
		http.Error(w, "Plan not found", http.StatusNotFound)
		return
	}
	if !plan.Active {
		http.Error(w, "Plan is not available", http.StatusBadRequest)
		return
	}

	purpose := checkoutRequest.Purpose
	if purpose == "" {
		purpose = models.PaymentPurposeSubscriptionInitial
	}

	// The plan is the source of truth for amount and currency: both
	// documents are built from it, which keeps the pairing invariant.
	orderIn := billing.OrderInput{
		UserID:   user.ID,
		PlanID:   plan.ID,
		Amount:   plan.Price,
		Currency: plan.Currency,
	}
	paymentIn := billing.PaymentInput{
		UserID:               user.ID,
		PlanID:               plan.ID,
		Amount:               plan.Price,
		Currency:             plan.Currency,
		Gateway:              checkoutRequest.PaymentGateway,
		Purpose:              purpose,
		PaymentMethodDetails: checkoutRequest.PaymentMethodDetails,
	}

	result, err := oc.Coordinator.CreateOrderWithPayment(ctx, orderIn, paymentIn, billing.Options{
		ForceSequential: oc.ForceSequential,
	})
	if err != nil {
		oc.respondBillingError(w, err)
		return
	}

	// Send receipt email to user
	go func(email string, order models.Order, payment models.Payment) {
		if err := oc.EmailService.SendPaymentReceiptEmail(email, order, payment); err != nil {
			oc.Logger.Warn("failed to send receipt email", zap.String("email", email), zap.Error(err))
		}
	}(user.Email, *result.Order, *result.Payment)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// respondBillingError maps the coordinator's error taxonomy onto HTTP
// statuses. Only the classified kind and public message cross this boundary;
// the underlying cause was already logged by the coordinator.
func (oc *OrderController) respondBillingError(w http.ResponseWriter, err error) {
	var classified *billing.ClassifiedError
	if !errors.As(err, &classified) {
		http.Error(w, billing.PublicMessage, http.StatusInternalServerError)
		return
	}

	switch classified.Kind {
	case billing.KindValidation:
		http.Error(w, classified.Error(), http.StatusBadRequest)
	case billing.KindTransientStorage:
		http.Error(w, classified.Error(), http.StatusServiceUnavailable)
	case billing.KindCompensationFailure:
		// Known orphan in storage: alert, do not retry.
		oc.Logger.Error("checkout left an orphaned order, manual remediation required",
			zap.String("order_id", classified.OrphanOrderID.Hex()))
		http.Error(w, classified.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, classified.Error(), http.StatusInternalServerError)
	}
}

// GetOrders retrieves all orders for the authenticated user
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := oc.UserCollection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	orders, err := oc.Orders.FindOrdersByUser(ctx, user.ID)
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// CancelOrder cancels an order (admin only). Cancellation is a later
// lifecycle transition: it flips the status and never touches payments.
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok || claims.Role != "admin" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = oc.Orders.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to cancel order", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Order cancelled successfully"})
}
