package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/report"
	"github.com/thuan-cell/thuan-cell/internal/repository"
	"github.com/thuan-cell/thuan-cell/internal/scoring"
	"github.com/thuan-cell/thuan-cell/views"
)

type EvaluationHandler struct {
	log    *zap.Logger
	store  *repository.SessionStore
	rubric *models.Rubric
}

func NewEvaluationHandler(log *zap.Logger, store *repository.SessionStore, rubric *models.Rubric) *EvaluationHandler {
	return &EvaluationHandler{log: log, store: store, rubric: rubric}
}

type rateForm struct {
	ItemID string `form:"itemId" binding:"required,max=32"`
	Level  string `form:"level" binding:"required"`
}

type noteForm struct {
	ItemID string `form:"itemId" binding:"required,max=32"`
	Note   string `form:"note" binding:"max=2000"`
}

// Page renders the editor, or the report preview when preview mode is on.
func (h *EvaluationHandler) Page(c *gin.Context) {
	sess, err := h.store.Get(sessionID(c))
	if err != nil {
		sessionLost(c, h.log, err)
		return
	}
	renderPage(c, h.log, pageTitle, views.EvaluationPage(h.pageView(c, sess)), isHTMX(c))
}

// Rate records a rating and answers with the refreshed card plus the results
// panel swapped out of band.
func (h *EvaluationHandler) Rate(c *gin.Context) {
	var form rateForm
	if err := c.ShouldBind(&form); err != nil {
		Fail(c, http.StatusBadRequest, "Dữ liệu đánh giá không hợp lệ.")
		return
	}
	level, err := models.ParseRatingLevel(form.Level)
	if err != nil {
		Fail(c, http.StatusBadRequest, "Mức đánh giá không hợp lệ.")
		return
	}

	sess, err := h.store.Update(sessionID(c), time.Now(), func(s *models.Session) error {
		return s.Rate(h.rubric, form.ItemID, level)
	})
	if err != nil {
		h.mutationFailed(c, err)
		return
	}

	h.log.Debug("Item rated", zap.String("session", sess.ID), zap.String("item", form.ItemID), zap.String("level", string(level)))
	if !isHTMX(c) {
		done(c)
		return
	}

	item, _ := h.rubric.Item(form.ItemID)
	results := h.resultsView(sess)
	results.OOB = true

	c.Header("Content-Type", "text/html; charset=utf-8")
	ctx := c.Request.Context()
	if err := views.ItemCard(views.NewItemView(item, sess.Ratings[item.ID])).Render(ctx, c.Writer); err != nil {
		h.log.Error("Failed to render item card", zap.Error(err))
		return
	}
	if err := views.ResultsPanel(results).Render(ctx, c.Writer); err != nil {
		h.log.Error("Failed to render results panel", zap.Error(err))
	}
}

// Note stores the free text note of an item. Notes never change scores so
// HTMX gets nothing to swap.
func (h *EvaluationHandler) Note(c *gin.Context) {
	var form noteForm
	if err := c.ShouldBind(&form); err != nil {
		Fail(c, http.StatusBadRequest, "Ghi chú không hợp lệ (tối đa 2000 ký tự).")
		return
	}

	if _, err := h.store.Update(sessionID(c), time.Now(), func(s *models.Session) error {
		return s.SetNote(h.rubric, form.ItemID, form.Note)
	}); err != nil {
		h.mutationFailed(c, err)
		return
	}

	if !isHTMX(c) {
		done(c)
		return
	}
	c.Status(http.StatusNoContent)
}

// TogglePreview switches between the editor and the report preview.
func (h *EvaluationHandler) TogglePreview(c *gin.Context) {
	sess, err := h.store.Update(sessionID(c), time.Now(), func(s *models.Session) error {
		s.TogglePreview()
		return nil
	})
	if err != nil {
		h.mutationFailed(c, err)
		return
	}
	if !isHTMX(c) {
		done(c)
		return
	}
	renderPage(c, h.log, pageTitle, views.EvaluationPage(h.pageView(c, sess)), true)
}

func (h *EvaluationHandler) pageView(c *gin.Context, sess *models.Session) views.PageView {
	csrf := c.GetString(CSRFTokenContextKey)
	v := views.PageView{
		Preview:  sess.Preview,
		Employee: views.NewEmployeeView(sess, csrf),
		Theme:    theme(c),
		CSRF:     csrf,
	}
	if sess.Preview {
		res := scoring.Aggregate(h.rubric, sess.Ratings)
		v.Report = report.Build(h.rubric, sess, res, time.Now())
		return v
	}
	v.Categories = views.NewCategoryViews(h.rubric, sess.Ratings)
	v.Results = h.resultsView(sess)
	return v
}

func (h *EvaluationHandler) resultsView(sess *models.Session) views.ResultsView {
	res := scoring.Aggregate(h.rubric, sess.Ratings)
	return views.NewResultsView(h.rubric, sess.Ratings, res, chartOptions(res.Categories))
}

func (h *EvaluationHandler) mutationFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownItem):
		Fail(c, http.StatusBadRequest, "Không tìm thấy tiêu chí đánh giá.")
	case errors.Is(err, models.ErrInvalidLevel):
		Fail(c, http.StatusBadRequest, "Mức đánh giá không hợp lệ.")
	default:
		sessionLost(c, h.log, err)
	}
}
