package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/dto"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/service"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/response"
)

// ActivationHandler 学期激活模块 HTTP 处理器
type ActivationHandler struct {
	activationSvc service.ActivationService
}

// NewActivationHandler 创建 ActivationHandler
func NewActivationHandler(activationSvc service.ActivationService) *ActivationHandler {
	return &ActivationHandler{activationSvc: activationSvc}
}

// Resolve 查询学期名称的激活状态
// GET /api/v1/activation?label=xxx&date=2024-10-15
func (h *ActivationHandler) Resolve(c *gin.Context) {
	var q dto.ActivationQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.activationSvc.Resolve(q.Label, q.Date)
	if err != nil {
		h.handleActivationError(c, err)
		return
	}

	response.OK(c, result)
}

// Calendar 导出学期区间为 iCalendar 文件
// GET /api/v1/activation/calendar?label=xxx
func (h *ActivationHandler) Calendar(c *gin.Context) {
	var q dto.CalendarQuery
	if !bindQuery(c, &q) {
		return
	}

	data, filename, err := h.activationSvc.Calendar(q.Label)
	if err != nil {
		h.handleActivationError(c, err)
		return
	}

	sendFile(c, filename, "text/calendar; charset=utf-8", data)
}

// SyncCourses 立即按当天刷新全部课程的 is_active
// POST /api/v1/courses/activation/sync
func (h *ActivationHandler) SyncCourses(c *gin.Context) {
	result, err := h.activationSvc.SyncCourses(c.Request.Context(), time.Now())
	if err != nil {
		h.handleActivationError(c, err)
		return
	}

	response.OK(c, result)
}

// handleActivationError 统一处理学期激活模块业务错误
func (h *ActivationHandler) handleActivationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivationNotApplicable):
		response.UnprocessableEntity(c, 12001, "无法从学期名称识别学期类型或年份")
	case errors.Is(err, service.ErrActivationInvalidDate):
		response.BadRequest(c, 12002, "参考日期格式无效")
	default:
		response.InternalError(c)
	}
}
