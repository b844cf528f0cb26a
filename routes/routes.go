package routes

import (
	"github.com/gorilla/mux"

	"github.com/jkpcodes/discord-clone-backend/controllers"
)

// RegisterRoutes sets up the unauthenticated base routes
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
}
