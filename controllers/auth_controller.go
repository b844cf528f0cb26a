package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// AuthController handles registration and login
type AuthController struct {
	AuthService *services.AuthService
}

// NewAuthController creates a new instance of AuthController
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, token, err := c.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.WriteErrorResponse(w, http.StatusConflict, "Email is already in use")
			return
		}
		log.Printf("❌ Failed to register user: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	log.Printf("✅ Registered user %s", profile.UserID)
	utils.WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"user":  profile.Summary(),
		"token": token,
	})
}

// Login handles POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, token, err := c.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("❌ Failed to log in user: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user":  profile.Summary(),
		"token": token,
	})
}
