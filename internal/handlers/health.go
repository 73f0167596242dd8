package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thuan-cell/thuan-cell/internal/repository"
)

// Health reports liveness and the number of open evaluation sessions.
func Health(store *repository.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": store.Len()})
	}
}
