package routes

import (
	"github.com/gorilla/mux"

	"github.com/jkpcodes/discord-clone-backend/controllers"
	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/socket"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// RegisterChatRoutes sets up routes for direct messages under /api/messages
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, notifier *socket.ChatNotifier) {
	controller := controllers.NewChatController(chatService, notifier)

	chatRouter := r.PathPrefix("/api/messages").Subrouter()
	chatRouter.Use(utils.AuthMiddleware)

	chatRouter.HandleFunc("/direct/{friendId}", controller.SendMessage).Methods("POST")
	chatRouter.HandleFunc("/direct/{friendId}", controller.GetMessages).Methods("GET")
}
