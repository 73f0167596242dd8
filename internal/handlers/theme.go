package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ToggleTheme flips the dark/light preference stored in a cookie.
func ToggleTheme(c *gin.Context) {
	next := ThemeLight
	if theme(c) == ThemeLight {
		next = ThemeDark
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ThemeCookie, next, themeMaxAge, "/", "", false, true)

	if isHTMX(c) {
		c.Header("HX-Refresh", "true")
		c.Status(http.StatusNoContent)
		return
	}
	done(c)
}
