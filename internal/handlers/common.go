package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/repository"
	"github.com/thuan-cell/thuan-cell/views"
)

// Context keys shared with the router middleware.
const (
	SessionIDKey        = "session_id"
	CSRFTokenContextKey = "csrf_token"
	CSPNonceContextKey  = "csp_nonce"

	ThemeCookie  = "theme"
	ThemeDark    = "dark"
	ThemeLight   = "light"
	themeMaxAge  = 365 * 24 * 60 * 60
	pageTitle    = "KPI Vận hành Lò hơi"
	reportTitle  = "Báo cáo KPI"
	alertTrigger = "showAlert"
)

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func sessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// theme reads the persisted preference. Anything unexpected falls back to dark.
func theme(c *gin.Context) string {
	if v, err := c.Cookie(ThemeCookie); err == nil && v == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// renderPage writes component as an HTMX fragment or wrapped in the layout.
func renderPage(c *gin.Context, log *zap.Logger, title string, component templ.Component, fragment bool) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	ctx := c.Request.Context()

	var err error
	if fragment {
		err = component.Render(ctx, c.Writer)
	} else {
		layout := views.Layout(title, theme(c), c.GetString(CSRFTokenContextKey), c.GetString(CSPNonceContextKey))
		err = layout.Render(templ.WithChildren(ctx, component), c.Writer)
	}
	if err != nil {
		log.Error("Failed to render view", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.String(http.StatusInternalServerError, "Error loading page")
	}
}

// Fail answers with status and a message the page shows in an alert. Plain
// requests get a full page with the alert instead.
func Fail(c *gin.Context, status int, message string) {
	defer c.Abort()
	c.Header("HX-Trigger", triggerJSON(map[string]string{alertTrigger: message}))
	if isHTMX(c) {
		c.String(status, message)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	ctx := c.Request.Context()
	layout := views.Layout(pageTitle, theme(c), c.GetString(CSRFTokenContextKey), c.GetString(CSPNonceContextKey))
	if err := layout.Render(templ.WithChildren(ctx, views.Alert(message, "error")), c.Writer); err != nil {
		c.String(status, message)
	}
}

// done finishes a mutation for a plain form post by sending the browser home.
func done(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// triggerJSON encodes an HX-Trigger payload. Header values must stay ASCII, so
// anything else is written as a \u escape which htmx's JSON.parse restores.
func triggerJSON(events map[string]string) string {
	raw, err := json.Marshal(events)
	if err != nil {
		return "{}"
	}
	var b strings.Builder
	for _, r := range string(raw) {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r > 0xFFFF:
			r -= 0x10000
			fmt.Fprintf(&b, `\u%04x\u%04x`, 0xD800+(r>>10), 0xDC00+(r&0x3FF))
		default:
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String()
}

// sessionLost handles a session that disappeared between the loader and the
// handler, typically swept while the tab was idle.
func sessionLost(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, repository.ErrSessionNotFound) {
		log.Warn("Session expired", zap.String("session", sessionID(c)))
		if isHTMX(c) {
			c.Header("HX-Redirect", "/")
		}
		Fail(c, http.StatusGone, "Phiên làm việc đã hết hạn, vui lòng tải lại trang.")
		return
	}
	log.Error("Session update failed", zap.Error(err))
	Fail(c, http.StatusInternalServerError, "Đã xảy ra lỗi, vui lòng thử lại.")
}
