package service

import (
	"go.uber.org/zap"

	"club-attendance/backend/config"
	"club-attendance/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Student    StudentService
	Attendance AttendanceService
	Stats      StatsService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		Student:    NewStudentService(cfg, repo, logger),
		Attendance: NewAttendanceService(repo, logger),
		Stats:      NewStatsService(repo, logger),
		Export:     NewExportService(repo, logger),
	}
}
