package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jkpcodes/discord-clone-backend/models"
	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/socket"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// ChatController handles direct-message requests
type ChatController struct {
	ChatService *services.ChatService
	Notifier    *socket.ChatNotifier
}

// NewChatController creates a new instance of ChatController
func NewChatController(chatService *services.ChatService, notifier *socket.ChatNotifier) *ChatController {
	return &ChatController{ChatService: chatService, Notifier: notifier}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// SendMessage handles POST /api/messages/direct/{friendId}. The persisted
// message is also pushed over the socket layer to both participants.
func (c *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := c.ChatService.SendDirectMessage(r.Context(), user.UserID, mux.Vars(r)["friendId"], req.Content, models.MessageTypeDirect)
	if err != nil {
		log.Printf("❌ Failed to send message from %s: %v", user.UserID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	c.Notifier.DeliverMessage(*payload)
	utils.WriteJSONResponse(w, http.StatusCreated, payload)
}

// GetMessages handles GET /api/messages/direct/{friendId}?skip=0&take=50
func (c *ChatController) GetMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	peerID := mux.Vars(r)["friendId"]
	skip := queryInt(r, "skip", 0)
	take := queryInt(r, "take", 0)

	page, err := c.ChatService.GetDirectMessages(r.Context(), user.UserID, peerID, skip, take)
	if err != nil {
		log.Printf("❌ Failed to load messages for %s: %v", user.UserID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, page)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
