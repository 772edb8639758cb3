package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/auth"
	"github.com/atharvakonge/paper-trader/internal/models"
)

// Register handles POST /api/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrs.ErrBadBody)
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.UserResponse{OK: true, User: auth.IdentityOf(u)})
}

// Login handles POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrs.ErrBadBody)
		return
	}

	u, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	id := auth.IdentityOf(u)
	token, ttl, err := h.sessions.Issue(id, req.Remember)
	if err != nil {
		writeError(c, err)
		return
	}
	h.sessions.SetCookie(c, token, ttl)

	c.JSON(http.StatusOK, models.UserResponse{OK: true, User: id})
}

// Logout handles POST /api/logout
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me handles GET /api/me
func (h *Handler) Me(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)
	c.JSON(http.StatusOK, models.UserResponse{User: id})
}
