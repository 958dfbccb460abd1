// routes/routes.go
package routes

import (
	"fintrack/controllers"
	"fintrack/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, planController *controllers.PlanController, orderController *controllers.OrderController, paymentController *controllers.PaymentController) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/verify", userController.VerifyEmail).Methods("GET")

	// Plan routes
	router.HandleFunc("/plans", planController.GetPlans).Methods("GET")
	router.HandleFunc("/plans/{id}", planController.GetPlanByID).Methods("GET")

	// Admin plan routes
	adminPlans := router.PathPrefix("/plans").Subrouter()
	adminPlans.Use(middleware.AuthMiddleware)
	adminPlans.Use(middleware.AdminMiddleware)
	adminPlans.HandleFunc("", planController.CreatePlan).Methods("POST")
	adminPlans.HandleFunc("/{id}", planController.UpdatePlan).Methods("PUT")
	adminPlans.HandleFunc("/{id}", planController.DeletePlan).Methods("DELETE")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")
	protected.HandleFunc("/checkout", orderController.Checkout).Methods("POST")
	protected.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/payments", paymentController.GetPayments).Methods("GET")

	// Admin order routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/orders/{id}/cancel", orderController.CancelOrder).Methods("POST")
	admin.HandleFunc("/orders/{id}/payments", paymentController.GetPaymentsByOrder).Methods("GET")
}
