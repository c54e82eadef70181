package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/dto"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/service"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// RecordAttendance 批量记录考勤，进入自动保存队列后立即返回 202
// PUT /api/v1/courses/:id/attendance
func (h *AttendanceHandler) RecordAttendance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.RecordAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.RecordMarks(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.Accepted(c, result)
}

// ListAttendance 获取某日考勤记录
// GET /api/v1/courses/:id/attendance?date=2024-10-15
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var q dto.AttendanceListQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.attendanceSvc.ListMarks(c.Request.Context(), id, q.Date)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// GetAnalytics 获取某日考勤统计
// GET /api/v1/courses/:id/attendance/analytics?date=2024-10-15&periods=1,2
func (h *AttendanceHandler) GetAnalytics(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var q dto.AnalyticsQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.attendanceSvc.GetAnalytics(c.Request.Context(), id, &q)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAttendanceError 统一处理考勤模块业务错误，导出模块共用
func handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrAttendanceInvalidDate):
		response.BadRequest(c, 14001, "考勤日期格式无效")
	case errors.Is(err, service.ErrAttendanceInvalidStatus):
		response.BadRequest(c, 14002, "考勤状态无效")
	case errors.Is(err, service.ErrAttendancePeriodRange):
		response.BadRequest(c, 14003, "节次超出课程每日节数")
	case errors.Is(err, service.ErrAttendanceInvalidPeriods):
		response.BadRequest(c, 14004, "节次参数格式无效")
	case errors.Is(err, service.ErrAttendanceNotEnrolled):
		response.UnprocessableEntity(c, 14005, "学生未选修该课程")
	case errors.Is(err, service.ErrAttendanceSaveFailed):
		response.Error(c, http.StatusServiceUnavailable, 14006, "考勤暂存数据保存失败，请稍后重试")
	case errors.Is(err, service.ErrAttendanceUnavailable):
		response.Error(c, http.StatusServiceUnavailable, 14007, "考勤服务正在关闭")
	default:
		response.InternalError(c)
	}
}
