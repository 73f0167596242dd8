package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thuan-cell/thuan-cell/internal/handlers"
	"github.com/thuan-cell/thuan-cell/internal/utils"
)

// NonceMiddleware creates a fresh nonce for each request and adds it to the Gin
// context for use in the CSP header and the templates.
func NonceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce, err := utils.GenerateSecureToken(16)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(handlers.CSPNonceContextKey, nonce)
		c.Next()
	}
}

// ContentSecurityPolicy allows scripts from our origin, the two CDNs and
// inline scripts carrying the request nonce. Logos are inlined as data URLs.
func ContentSecurityPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("HX-Request") != "true" {
			c.Header("Content-Security-Policy",
				"default-src 'self'; "+
					"script-src 'self' https://unpkg.com https://cdn.jsdelivr.net 'nonce-"+c.GetString(handlers.CSPNonceContextKey)+"'; "+
					"style-src 'self' 'unsafe-inline'; "+
					"img-src 'self' data:; "+
					"frame-ancestors 'none'")
		}
		c.Next()
	}
}
