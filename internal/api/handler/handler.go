package handler

import "github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Activation *ActivationHandler
	Course     *CourseHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Activation: NewActivationHandler(svc.Activation),
		Course:     NewCourseHandler(svc.Course),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Export),
	}
}
