package handler

import "club-attendance/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Student    *StudentHandler
	Attendance *AttendanceHandler
	Stats      *StatsHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Student:    NewStudentHandler(svc.Student),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Stats:      NewStatsHandler(svc.Stats),
		Export:     NewExportHandler(svc.Export),
	}
}
