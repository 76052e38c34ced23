package handler

import (
	"net/http"
	"time"

	"inspectoriq/internal/logger"
	"inspectoriq/internal/middleware"
	"inspectoriq/internal/model"
	"inspectoriq/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthHandler struct{ auth *service.AuthService }

func NewAuthHandler(auth *service.AuthService) *AuthHandler { return &AuthHandler{auth: auth} }

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("signin.failed", "email", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  sess.ID,
		"name": sess.Name,
		"exp":  time.Now().Add(7 * 24 * time.Hour).Unix(),
	}).SignedString(middleware.JWTSecret)

	c.JSON(http.StatusOK, model.SignInResponse{Token: token, User: *sess})
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.auth.SignUp(c.Request.Context(), req.FullName, req.Email, req.Password); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "sign up failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "redirect": "/signin"})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	sess := middleware.Session(c)
	if err := h.auth.SignOut(sess.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UpdateAccount proxies settings changes upstream. Password mismatch is a
// precondition failure: state unchanged, user corrects and retries.
func (h *AuthHandler) UpdateAccount(c *gin.Context) {
	var req model.AccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	sess := middleware.Session(c)
	if err := h.auth.UpdateAccount(c.Request.Context(), sess, req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
