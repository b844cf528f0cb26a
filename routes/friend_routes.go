package routes

import (
	"github.com/gorilla/mux"

	"github.com/jkpcodes/discord-clone-backend/controllers"
	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/socket"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// RegisterFriendRoutes sets up routes for friend management under /api/friends
func RegisterFriendRoutes(r *mux.Router, friendService *services.FriendService, presence *socket.PresenceManager) {
	controller := controllers.NewFriendController(friendService, presence)

	friendRouter := r.PathPrefix("/api/friends").Subrouter()
	friendRouter.Use(utils.AuthMiddleware)

	friendRouter.HandleFunc("", controller.List).Methods("GET")
	friendRouter.HandleFunc("/invite", controller.Invite).Methods("POST")
	friendRouter.HandleFunc("/accept", controller.Accept).Methods("POST")
	friendRouter.HandleFunc("/reject", controller.Reject).Methods("POST")
	friendRouter.HandleFunc("/cancel", controller.Cancel).Methods("POST")
	friendRouter.HandleFunc("/invitations", controller.PendingInvitations).Methods("GET")
	friendRouter.HandleFunc("/invitations/sent", controller.SentInvitations).Methods("GET")
}
