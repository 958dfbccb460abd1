package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fintrack/models"
	"fintrack/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PlanController handles billing plan requests
type PlanController struct {
	Collection *mongo.Collection
}

// NewPlanController creates a new PlanController
func NewPlanController(client *mongo.Client) *PlanController {
	collection := client.Database(utils.DatabaseName).Collection("plans")
	return &PlanController{
		Collection: collection,
	}
}

// GetPlans retrieves all active plans
func (pc *PlanController) GetPlans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := pc.Collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		http.Error(w, "Failed to retrieve plans", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var plans []models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		http.Error(w, "Error decoding plans", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plans)
}

// GetPlanByID retrieves a single plan
func (pc *PlanController) GetPlanByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	planID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid plan ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var plan models.Plan
	err = pc.Collection.FindOne(ctx, bson.M{"_id": planID}).Decode(&plan)
	if err != nil {
		http.Error(w, "Plan not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}

// CreatePlan creates a new plan (admin only)
func (pc *PlanController) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan models.Plan
	err := json.NewDecoder(r.Body).Decode(&plan)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if plan.Name == "" || plan.Price <= 0 || len(plan.Currency) != 3 {
		http.Error(w, "Plan requires a name, a positive price and a 3-letter currency", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.InsertOne(ctx, plan)
	if err != nil {
		http.Error(w, "Failed to create plan", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"plan_id": result.InsertedID})
}

// UpdatePlan updates an existing plan (admin only)
func (pc *PlanController) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	planID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid plan ID", http.StatusBadRequest)
		return
	}

	var plan models.Plan
	err = json.NewDecoder(r.Body).Decode(&plan)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        plan.Name,
		"description": plan.Description,
		"price":       plan.Price,
		"currency":    plan.Currency,
		"interval":    plan.Interval,
		"active":      plan.Active,
	}}
	result, err := pc.Collection.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		http.Error(w, "Failed to update plan", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Plan not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Plan updated successfully"})
}

// DeletePlan deletes a plan (admin only)
func (pc *PlanController) DeletePlan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	planID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid plan ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.DeleteOne(ctx, bson.M{"_id": planID})
	if err != nil {
		http.Error(w, "Failed to delete plan", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, "Plan not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Plan deleted successfully"})
}
