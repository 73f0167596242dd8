package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/export"
	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/report"
	"github.com/thuan-cell/thuan-cell/internal/repository"
	"github.com/thuan-cell/thuan-cell/internal/scoring"
	"github.com/thuan-cell/thuan-cell/views"
)

// ReportRenderer writes a report as a downloadable document.
type ReportRenderer interface {
	Render(ctx context.Context, rep *report.Report, w io.Writer) error
}

type ReportHandler struct {
	log      *zap.Logger
	store    *repository.SessionStore
	rubric   *models.Rubric
	renderer ReportRenderer
}

func NewReportHandler(log *zap.Logger, store *repository.SessionStore, rubric *models.Rubric, renderer ReportRenderer) *ReportHandler {
	return &ReportHandler{log: log, store: store, rubric: rubric, renderer: renderer}
}

func (h *ReportHandler) build(sess *models.Session) *report.Report {
	res := scoring.Aggregate(h.rubric, sess.Ratings)
	return report.Build(h.rubric, sess, res, time.Now())
}

// Show renders the printable report. With ?print=1 the page opens the browser's
// print dialog once loaded.
func (h *ReportHandler) Show(c *gin.Context) {
	sess, err := h.store.Get(sessionID(c))
	if err != nil {
		sessionLost(c, h.log, err)
		return
	}
	component := views.Report(views.ReportView{
		Report: h.build(sess),
		Print:  c.Query("print") == "1",
		Nonce:  c.GetString(CSPNonceContextKey),
	})
	renderPage(c, h.log, reportTitle, component, false)
}

// PDF exports the report. Only one export runs per session at a time; a second
// request while one is in flight is refused and changes nothing.
func (h *ReportHandler) PDF(c *gin.Context) {
	id := sessionID(c)
	acquired, err := h.store.BeginExport(id)
	if err != nil {
		sessionLost(c, h.log, err)
		return
	}
	if !acquired {
		Fail(c, http.StatusConflict, "Đang xuất PDF, vui lòng chờ trong giây lát.")
		return
	}
	defer h.store.EndExport(id)

	sess, err := h.store.Get(id)
	if err != nil {
		sessionLost(c, h.log, err)
		return
	}
	rep := h.build(sess)

	start := time.Now()
	var buf bytes.Buffer
	err = h.renderer.Render(c.Request.Context(), rep, &buf)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.Info("PDF export abandoned", zap.String("session", id), zap.Error(err))
		c.Status(http.StatusRequestTimeout)
		return
	case errors.Is(err, export.ErrReportMissing):
		h.log.Warn("PDF export without report content", zap.String("session", id))
		Fail(c, http.StatusNotFound, "Không tìm thấy nội dung báo cáo.")
		return
	case errors.Is(err, export.ErrRendererUnavailable):
		h.log.Error("PDF renderer unavailable", zap.Error(err))
		Fail(c, http.StatusServiceUnavailable, "Thư viện tạo PDF chưa sẵn sàng, vui lòng thử lại sau.")
		return
	default:
		h.log.Error("PDF export failed", zap.String("session", id), zap.Error(err))
		Fail(c, http.StatusInternalServerError, "Có lỗi khi tạo PDF: "+err.Error())
		return
	}

	h.log.Info("PDF exported",
		zap.String("session", id),
		zap.String("file", rep.Filename),
		zap.Int("bytes", buf.Len()),
		zap.Duration("took", time.Since(start)),
	)
	c.Header("Content-Disposition", attachmentDisposition(rep.Filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// attachmentDisposition names a download. Non-ASCII names get an ASCII
// filename for old clients plus the RFC 5987 filename* form.
func attachmentDisposition(name string) string {
	var fallback strings.Builder
	ascii := true
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			fallback.WriteByte('_')
			ascii = false
			continue
		}
		fallback.WriteRune(r)
	}
	if ascii {
		return fmt.Sprintf(`attachment; filename="%s"`, name)
	}

	var encoded strings.Builder
	for i := 0; i < len(name); i++ {
		b := name[i]
		if isAttrChar(b) {
			encoded.WriteByte(b)
			continue
		}
		fmt.Fprintf(&encoded, "%%%02X", b)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback.String(), encoded.String())
}

func isAttrChar(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", b) >= 0
}
