package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripbuddy/internal/middleware"
	"tripbuddy/internal/service"
)

// ContactHandler handles contact-form submissions.
type ContactHandler struct {
	contact  *service.ContactService
	accounts *service.AccountService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contact *service.ContactService, accounts *service.AccountService) *ContactHandler {
	return &ContactHandler{contact: contact, accounts: accounts}
}

// ContactRequest is the HTTP request body for a contact submission.
type ContactRequest struct {
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Submit handles POST /v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.accounts.GetUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.contact.Submit(c.Request.Context(), user, req.Subject, req.Message); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusAccepted, gin.H{"message": "message received"})
}
