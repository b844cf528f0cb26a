package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// ServerController handles community server management
type ServerController struct {
	ServerService *services.ServerService
}

// NewServerController creates a new instance of ServerController
func NewServerController(serverService *services.ServerService) *ServerController {
	return &ServerController{ServerService: serverService}
}

type createServerRequest struct {
	Name string `json:"name" validate:"required,min=2,max=64"`
}

// CreateServer handles POST /api/servers
func (c *ServerController) CreateServer(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	var req createServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	server, err := c.ServerService.CreateServer(r.Context(), user, req.Name)
	if err != nil {
		log.Printf("❌ Failed to create server for %s: %v", user.UserID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create server")
		return
	}

	log.Printf("✅ Created server %s (%s)", server.ServerID, server.Name)
	utils.WriteJSONResponse(w, http.StatusCreated, server)
}

// ListServers handles GET /api/servers
func (c *ServerController) ListServers(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	servers, err := c.ServerService.ServersFor(r.Context(), user.UserID)
	if err != nil {
		log.Printf("❌ Failed to list servers for %s: %v", user.UserID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to list servers")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"servers": servers})
}

// GetServer handles GET /api/servers/{serverId}
func (c *ServerController) GetServer(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]

	server, err := c.ServerService.GetServer(r.Context(), serverID)
	if err != nil {
		if errors.Is(err, services.ErrServerNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Server not found")
			return
		}
		log.Printf("❌ Failed to fetch server %s: %v", serverID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to fetch server")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, server)
}

// JoinServer handles POST /api/servers/{serverId}/join
func (c *ServerController) JoinServer(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	serverID := mux.Vars(r)["serverId"]
	if err := c.ServerService.JoinServer(r.Context(), serverID, user.UserID); err != nil {
		if errors.Is(err, services.ErrServerNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Server not found")
			return
		}
		log.Printf("❌ Failed to join server %s: %v", serverID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to join server")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Joined server"})
}
