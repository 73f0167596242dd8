package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/config"
	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/repository"
	"github.com/thuan-cell/thuan-cell/internal/services"
	"github.com/thuan-cell/thuan-cell/views"
)

// multipartOverhead leaves room for the form fields around the file part.
const multipartOverhead = 64 << 10

type LogoHandler struct {
	log    *zap.Logger
	store  *repository.SessionStore
	limits func() config.UploadConfig
}

// NewLogoHandler reads limits on every upload so configuration reloads apply.
func NewLogoHandler(log *zap.Logger, store *repository.SessionStore, limits func() config.UploadConfig) *LogoHandler {
	return &LogoHandler{log: log, store: store, limits: limits}
}

// Upload replaces the session logo. A rejected file keeps the previous logo.
func (h *LogoHandler) Upload(c *gin.Context) {
	limits := h.limits()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limits.MaxBytes+multipartOverhead)

	fh, err := c.FormFile("logo")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			Fail(c, http.StatusRequestEntityTooLarge, "Ảnh logo quá lớn.")
			return
		}
		Fail(c, http.StatusBadRequest, "Vui lòng chọn một tệp ảnh.")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Error("Failed to open uploaded logo", zap.Error(err))
		Fail(c, http.StatusBadRequest, "Không đọc được tệp ảnh.")
		return
	}
	defer f.Close()

	logo, err := services.NewLogoProcessor(limits.MaxBytes, limits.LogoMaxPixels).Process(f)
	switch {
	case errors.Is(err, services.ErrLogoTooLarge):
		Fail(c, http.StatusRequestEntityTooLarge, "Ảnh logo quá lớn.")
		return
	case errors.Is(err, services.ErrLogoNotImage):
		Fail(c, http.StatusUnsupportedMediaType, "Tệp tải lên không phải ảnh PNG, JPEG, GIF hoặc WebP.")
		return
	case err != nil:
		h.log.Error("Failed to process logo", zap.Error(err))
		Fail(c, http.StatusInternalServerError, "Không xử lý được ảnh logo.")
		return
	}

	sess, err := h.store.Update(sessionID(c), time.Now(), func(s *models.Session) error {
		s.SetLogo(logo)
		return nil
	})
	if err != nil {
		sessionLost(c, h.log, err)
		return
	}
	h.log.Info("Logo updated", zap.String("session", sess.ID), zap.String("file", fh.Filename), zap.Int("bytes", len(logo.Data)))

	if !isHTMX(c) {
		done(c)
		return
	}
	renderPage(c, h.log, pageTitle, views.EmployeeCard(views.NewEmployeeView(sess, c.GetString(CSRFTokenContextKey))), true)
}
