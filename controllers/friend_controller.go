package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jkpcodes/discord-clone-backend/models"
	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/socket"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// FriendController handles friend invitations and the friends list. Every
// successful mutation triggers the matching realtime fan-out so clients see
// the change without polling.
type FriendController struct {
	FriendService *services.FriendService
	Presence      *socket.PresenceManager
}

// NewFriendController creates a new instance of FriendController
func NewFriendController(friendService *services.FriendService, presence *socket.PresenceManager) *FriendController {
	return &FriendController{FriendService: friendService, Presence: presence}
}

type inviteRequest struct {
	TargetEmail string `json:"targetEmail" validate:"required,email"`
}

type invitationActionRequest struct {
	InvitationID string `json:"invitationId" validate:"required"`
}

// Invite handles POST /api/friends/invite
func (c *FriendController) Invite(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	invitation, err := c.FriendService.InviteFriend(r.Context(), user, req.TargetEmail)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfInvite):
			utils.WriteErrorResponse(w, http.StatusConflict, "Sorry. You cannot become friend with yourself")
		case errors.Is(err, services.ErrUserNotFound):
			utils.WriteErrorResponse(w, http.StatusNotFound, "User with that email has not been found")
		case errors.Is(err, services.ErrAlreadyFriends):
			utils.WriteErrorResponse(w, http.StatusConflict, "Friend already added")
		case errors.Is(err, services.ErrAlreadyInvited):
			utils.WriteErrorResponse(w, http.StatusConflict, "Invitation has been already sent")
		case errors.Is(err, services.ErrPendingFromOther):
			utils.WriteErrorResponse(w, http.StatusConflict, "This user already sent you an invitation")
		default:
			log.Printf("❌ Failed to send invitation from %s: %v", user.UserID, err)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to send invitation")
		}
		return
	}

	c.Presence.AfterInvite(r.Context(), invitation.SenderID, invitation.ReceiverID)
	utils.WriteJSONResponse(w, http.StatusCreated, map[string]string{"message": "Invitation has been sent"})
}

// Accept handles POST /api/friends/accept
func (c *FriendController) Accept(w http.ResponseWriter, r *http.Request) {
	user, req, ok := c.decodeAction(w, r)
	if !ok {
		return
	}

	invitation, err := c.FriendService.GetInvitation(r.Context(), req.InvitationID)
	if err != nil {
		c.writeInvitationError(w, user.UserID, err)
		return
	}
	if invitation.ReceiverID != user.UserID {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Invitation is not addressed to you")
		return
	}

	accepted, err := c.FriendService.AcceptInvitation(r.Context(), req.InvitationID)
	if err != nil {
		c.writeInvitationError(w, user.UserID, err)
		return
	}

	c.Presence.AfterAccept(r.Context(), accepted.SenderID, accepted.ReceiverID)
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Invitation accepted"})
}

// Reject handles POST /api/friends/reject
func (c *FriendController) Reject(w http.ResponseWriter, r *http.Request) {
	c.removeInvitation(w, r, func(inv *models.FriendInvitation, userID string) bool {
		return inv.ReceiverID == userID
	}, "Invitation rejected")
}

// Cancel handles POST /api/friends/cancel. Same removal as
// reject, but only the sender may do it.
func (c *FriendController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.removeInvitation(w, r, func(inv *models.FriendInvitation, userID string) bool {
		return inv.SenderID == userID
	}, "Invitation cancelled")
}

// List handles GET /api/friends
func (c *FriendController) List(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	friends, err := c.FriendService.FriendsOf(r.Context(), user.UserID)
	if err != nil {
		log.Printf("❌ Failed to load friends of %s: %v", user.UserID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load friends")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

// PendingInvitations handles GET /api/friends/invitations
func (c *FriendController) PendingInvitations(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	invitations, err := c.FriendService.PendingInvitations(r.Context(), user.UserID)
	if err != nil {
		log.Printf("❌ Failed to load invitations of %s: %v", user.UserID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load invitations")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"invitations": invitations})
}

// SentInvitations handles GET /api/friends/invitations/sent
func (c *FriendController) SentInvitations(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return
	}

	invitations, err := c.FriendService.SentInvitations(r.Context(), user.UserID)
	if err != nil {
		log.Printf("❌ Failed to load sent invitations of %s: %v", user.UserID, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load sent invitations")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"invitations": invitations})
}

func (c *FriendController) removeInvitation(w http.ResponseWriter, r *http.Request, allowed func(*models.FriendInvitation, string) bool, ack string) {
	user, req, ok := c.decodeAction(w, r)
	if !ok {
		return
	}

	invitation, err := c.FriendService.GetInvitation(r.Context(), req.InvitationID)
	if err != nil {
		c.writeInvitationError(w, user.UserID, err)
		return
	}
	if !allowed(invitation, user.UserID) {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Invitation does not involve you")
		return
	}

	removed, err := c.FriendService.DeleteInvitation(r.Context(), req.InvitationID)
	if err != nil {
		c.writeInvitationError(w, user.UserID, err)
		return
	}

	c.Presence.AfterInvitationRemoved(r.Context(), removed.SenderID, removed.ReceiverID)
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": ack})
}

func (c *FriendController) decodeAction(w http.ResponseWriter, r *http.Request) (user models.UserSummary, req invitationActionRequest, ok bool) {
	user, found := utils.IdentityFromContext(r.Context())
	if !found {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Missing identity")
		return user, req, false
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request payload")
		return user, req, false
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return user, req, false
	}
	return user, req, true
}

func (c *FriendController) writeInvitationError(w http.ResponseWriter, userID string, err error) {
	if errors.Is(err, services.ErrInvitationNotFound) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Invitation not found")
		return
	}
	log.Printf("❌ Invitation operation failed for %s: %v", userID, err)
	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Invitation operation failed")
}
