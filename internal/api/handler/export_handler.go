package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/service"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendance 导出某课程某日考勤统计
// GET /api/v1/export/attendance?course_id=xxx&date=2024-10-15
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	courseID := c.Query("course_id")
	if courseID == "" {
		response.BadRequest(c, 10001, "course_id 不能为空")
		return
	}
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, 10001, "date 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), courseID, date)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, filename, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoStudents):
		response.NotFound(c, 16101, "该课程暂无选课学生")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleAttendanceError(c, err)
	}
}
