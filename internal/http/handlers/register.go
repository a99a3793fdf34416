package handlers

import (
	"errors"
	"net/http"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register creates a new user account. Duplicate logins get their own
// status so clients can tell "taken" from a server fault.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	err := h.Users.Register(c.Request.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrEmptyCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "login and password required"})
	case errors.Is(err, service.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "already registered"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
	default:
		c.JSON(http.StatusCreated, gin.H{"status": "ok", "login": req.Login})
	}
}
