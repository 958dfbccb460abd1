// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"fintrack/billing"
	"fintrack/controllers"
	"fintrack/routes"
	"fintrack/store"
	"fintrack/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	logger := utils.NewLogger()
	defer logger.Sync()

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	// Set up the storage layer
	orderStore := store.NewMongoOrderStore(client, utils.DatabaseName)
	paymentStore := store.NewMongoPaymentStore(client, utils.DatabaseName)
	if err := orderStore.EnsureIndexes(context.Background()); err != nil {
		logger.Warn("failed to ensure order indexes", zap.Error(err))
	}
	txnRunner := store.NewMongoTxnRunner(client)

	// Deployments without a replica set can skip the capability probe
	// entirely and always take the sequential write path.
	forceSequential := os.Getenv("FORCE_SEQUENTIAL_WRITES") == "true"

	coordinator := billing.NewCoordinator(orderStore, paymentStore, txnRunner, logger)

	// Initialize controllers
	userController := controllers.NewUserController(client, emailService)
	planController := controllers.NewPlanController(client)
	orderController := controllers.NewOrderController(client, orderStore, coordinator, emailService, logger, forceSequential)
	paymentController := controllers.NewPaymentController(client, paymentStore)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, planController, orderController, paymentController)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
