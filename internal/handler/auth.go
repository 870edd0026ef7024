package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripbuddy/internal/config"
	"tripbuddy/internal/middleware"
	"tripbuddy/internal/service"
)

// AuthHandler handles registration, verification and login.
type AuthHandler struct {
	accounts *service.AccountService
	authCfg  config.AuthConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *service.AccountService, authCfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{accounts: accounts, authCfg: authCfg}
}

// RegisterRequest is the HTTP request body for registration.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"` // renter, provider or both
}

// RegisterResponse is the HTTP response for registration.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Message  string `json:"message"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.accounts.Register(c.Request.Context(), service.RegisterRequest{
		Username:        req.Username,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Registered. Check your email for the verification link."
	if !result.MailSent {
		message = "Registered, but the verification email could not be delivered. Use resend-verification to try again."
	}

	respondJSON(c, http.StatusCreated, RegisterResponse{
		ID:       result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
		Role:     result.User.RoleLabel(),
		Message:  message,
	})
}

// Verify handles GET /v1/auth/verify?token=...
func (h *AuthHandler) Verify(c *gin.Context) {
	already, err := h.accounts.Verify(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Email verified. You can now log in."
	if already {
		message = "Account already verified. You can log in."
	}
	respondJSON(c, http.StatusOK, gin.H{"message": message})
}

// ResendVerificationRequest is the HTTP request body for resending the link.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// ResendVerification handles POST /v1/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.accounts.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	// Same response whether or not the address is registered.
	respondJSON(c, http.StatusOK, gin.H{
		"message": "If that email belongs to an unverified account, a new verification link is on its way.",
	})
}

// LoginRequest is the HTTP request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the HTTP response for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(h.authCfg.JWTSecret, user.ID, h.authCfg.JWTTTL)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}
