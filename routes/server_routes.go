package routes

import (
	"github.com/gorilla/mux"

	"github.com/jkpcodes/discord-clone-backend/controllers"
	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// RegisterServerRoutes sets up routes for community servers under /api/servers
func RegisterServerRoutes(r *mux.Router, serverService *services.ServerService) {
	controller := controllers.NewServerController(serverService)

	serverRouter := r.PathPrefix("/api/servers").Subrouter()
	serverRouter.Use(utils.AuthMiddleware)

	serverRouter.HandleFunc("", controller.CreateServer).Methods("POST")
	serverRouter.HandleFunc("", controller.ListServers).Methods("GET")
	serverRouter.HandleFunc("/{serverId}", controller.GetServer).Methods("GET")
	serverRouter.HandleFunc("/{serverId}/join", controller.JoinServer).Methods("POST")
}
