package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fintrack/middleware"
	"fintrack/models"
	"fintrack/store"
	"fintrack/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentController handles payment read requests
type PaymentController struct {
	UserCollection *mongo.Collection
	Payments       store.PaymentStore
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(client *mongo.Client, payments store.PaymentStore) *PaymentController {
	return &PaymentController{
		UserCollection: client.Database(utils.DatabaseName).Collection("users"),
		Payments:       payments,
	}
}

// GetPayments retrieves all payments for the authenticated user
func (pc *PaymentController) GetPayments(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := pc.UserCollection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	payments, err := pc.Payments.FindPaymentsByUser(ctx, user.ID)
	if err != nil {
		http.Error(w, "Failed to retrieve payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}

// GetPaymentsByOrder retrieves the payments for an order (admin only)
func (pc *PaymentController) GetPaymentsByOrder(w http.ResponseWriter, r *http.Request) {
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
	payments, err := pc.Payments.FindPaymentsByOrder(ctx, orderID)
	if err != nil {
		http.Error(w, "Failed to retrieve payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}
