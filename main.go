package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/jkpcodes/discord-clone-backend/routes"
	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/socket"
)

func main() {
	// Load environment overrides from .env when present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	authService := &services.AuthService{Dynamo: dynamoService, Profiles: userProfileService}
	friendService := &services.FriendService{Dynamo: dynamoService, Profiles: userProfileService}
	chatService := &services.ChatService{Dynamo: dynamoService, Profiles: userProfileService}
	serverService := &services.ServerService{Dynamo: dynamoService}

	// Initialize the realtime layer
	registry := socket.NewRegistry()
	socketServer := socket.NewServer(registry, friendService, chatService, serverService)

	go func() {
		if err := socketServer.IO.Serve(); err != nil {
			log.Fatalf("❌ Socket server error: %v", err)
		}
	}()
	defer socketServer.IO.Close()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()
	r.Handle("/socket.io/", socketServer.IO)

	// Register routes
	routes.RegisterRoutes(r)
	routes.RegisterAuthRoutes(r, authService)
	routes.RegisterFriendRoutes(r, friendService, socketServer.Presence)
	routes.RegisterChatRoutes(r, chatService, socketServer.Chat)
	routes.RegisterServerRoutes(r, serverService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
