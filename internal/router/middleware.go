package router

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/handlers"
	"github.com/thuan-cell/thuan-cell/internal/repository"
)

const (
	sessionIDKey = "sid"
	// sessionDirtyKey marks a cookie session with unsaved values. CSRFProtection
	// saves it once so the response carries a single Set-Cookie.
	sessionDirtyKey = "session_dirty"
)

// SessionLoader ties the browser's cookie session to an evaluation in the store.
// A missing or expired evaluation is replaced by a fresh one, so handlers can
// always rely on handlers.SessionIDKey being set. It must run before
// CSRFProtection, which persists the cookie.
func SessionLoader(log *zap.Logger, store *repository.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		now := time.Now()

		id, _ := session.Get(sessionIDKey).(string)
		if id == "" || !store.Touch(id, now) {
			sess := store.Create(now)
			session.Set(sessionIDKey, sess.ID)
			c.Set(sessionDirtyKey, true)
			if id != "" {
				log.Info("Evaluation session expired, started a new one", zap.String("old", id), zap.String("new", sess.ID))
			}
			id = sess.ID
		}

		c.Set(handlers.SessionIDKey, id)
		c.Next()
	}
}
