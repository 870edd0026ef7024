package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/middleware"
	"tripbuddy/internal/service"
)

// UserHandler handles HTTP requests for the authenticated user's account.
type UserHandler struct {
	accounts *service.AccountService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts *service.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// UserResponse is the HTTP representation of a user.
type UserResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Role          string `json:"role"`
	CanOfferRides bool   `json:"can_offer_rides"`
	CanFindRides  bool   `json:"can_find_rides"`
	RidesTaken    int    `json:"rides_taken"`
	Verified      bool   `json:"verified"`
	LastLoginAt   string `json:"last_login_at,omitempty"`
}

func toUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.RoleLabel(),
		CanOfferRides: u.CanOfferRides,
		CanFindRides:  u.CanFindRides,
		RidesTaken:    u.RidesTaken,
		Verified:      u.Verified,
	}
	if !u.LastLoginAt.IsZero() {
		resp.LastLoginAt = u.LastLoginAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Me handles GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.accounts.GetUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// ActivateOffering handles POST /v1/users/me/offering
func (h *UserHandler) ActivateOffering(c *gin.Context) {
	user, err := h.accounts.ActivateOffering(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// ActivateFinding handles POST /v1/users/me/finding
func (h *UserHandler) ActivateFinding(c *gin.Context) {
	user, err := h.accounts.ActivateFinding(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /v1/users/me
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"message": "account deleted"})
}
