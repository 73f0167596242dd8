package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/repository"
	"github.com/thuan-cell/thuan-cell/views"
)

type EmployeeHandler struct {
	log   *zap.Logger
	store *repository.SessionStore
}

func NewEmployeeHandler(log *zap.Logger, store *repository.SessionStore) *EmployeeHandler {
	return &EmployeeHandler{log: log, store: store}
}

// employeeForm is the whole header form; every change posts all fields.
type employeeForm struct {
	models.EmployeeInfo
	Period string `form:"period" binding:"required,period"`
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	var form employeeForm
	if err := c.ShouldBind(&form); err != nil {
		h.log.Debug("Rejected employee form", zap.Error(err))
		Fail(c, http.StatusUnprocessableEntity, "Thông tin nhân viên không hợp lệ. Kiểm tra độ dài, ngày lập và kỳ đánh giá (YYYY-MM).")
		return
	}

	sess, err := h.store.Update(sessionID(c), time.Now(), func(s *models.Session) error {
		fields := map[string]string{
			"name":       form.Name,
			"id":         form.ID,
			"position":   form.Position,
			"department": form.Department,
			"reportDate": form.ReportDate,
		}
		for field, value := range fields {
			if err := s.SetEmployeeField(field, value); err != nil {
				return err
			}
		}
		return s.SetPeriod(form.Period)
	})
	if err != nil {
		sessionLost(c, h.log, err)
		return
	}

	if !isHTMX(c) {
		done(c)
		return
	}
	renderPage(c, h.log, pageTitle, views.EmployeeCard(views.NewEmployeeView(sess, c.GetString(CSRFTokenContextKey))), true)
}
