package handlers

import (
	"errors"
	"net/http"

	"railway/internal/http/middleware"
	"railway/internal/services"
	"railway/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Auth services.AuthService
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	token, op, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.LogWarn(middleware.GetRequestID(c), "auth", "login", "rejected username="+req.Username)
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid username or password", nil)
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  op,
	})
}
