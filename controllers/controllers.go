package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jkpcodes/discord-clone-backend/utils"
)

// validate is shared by every controller; request structs carry the rules
var validate = validator.New()

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Server is running!"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Welcome to the server! This is the Discord Clone API."})
}
