package handler

import (
	"net/http"

	"inspectoriq/internal/logger"
	"inspectoriq/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Feedback acknowledges the quick thumbs-up/down prompt shown after a
// report is generated. The signal is only logged.
func Feedback(c *gin.Context) {
	var req struct {
		Positive bool   `json:"positive"`
		Message  string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	sess := middleware.Session(c)
	logger.Info("feedback.received", "uid", sess.ID, "positive", req.Positive, "message", req.Message)
	if req.Positive {
		c.JSON(http.StatusOK, gin.H{"message": "Thank you!"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Will improve!"})
}
