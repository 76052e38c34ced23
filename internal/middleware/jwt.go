package middleware

import (
	"net/http"
	"strings"

	"inspectoriq/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var JWTSecret = []byte("inspectoriq-secret-2026")

// SessionResolver looks a signed-in user's session up by id.
type SessionResolver interface {
	Resume(userID int) (*model.Session, bool)
}

// Auth verifies the app JWT and attaches the resolved session. Absence of a
// session is the signal for the client to redirect to /signin; nothing past
// this middleware runs without one.
func Auth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "redirect": "/signin"})
			return
		}
		token, err := jwt.Parse(auth[7:], func(t *jwt.Token) (interface{}, error) {
			return JWTSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "redirect": "/signin"})
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		uid, ok := claims["uid"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "redirect": "/signin"})
			return
		}
		sess, ok := sessions.Resume(int(uid))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired", "redirect": "/signin"})
			return
		}
		c.Set("session", sess)
		c.Next()
	}
}

// Session pulls the session the Auth middleware attached.
func Session(c *gin.Context) *model.Session {
	v, _ := c.Get("session")
	sess, _ := v.(*model.Session)
	return sess
}

// TabID identifies the calling browser tab; tabs without an id share a
// throwaway scope.
func TabID(c *gin.Context) string {
	return c.GetHeader("X-Tab-ID")
}
