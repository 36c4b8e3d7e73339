package service

import (
	"context"

	"go.uber.org/zap"

	"club-attendance/backend/internal/dto"
	"club-attendance/backend/internal/model"
	"club-attendance/backend/internal/repository"
)

// StatsService 考勤统计业务接口
//
// 统计每次调用都重新计算（不做缓存），与台账保持即时一致；
// 当日未标记的学生既不计入 present 也不计入 absent。
type StatsService interface {
	Stats(ctx context.Context, asOf string) (*dto.StatsResponse, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

// Stats 计算指定日期的考勤统计，asOf 为空时取当日
func (s *statsService) Stats(ctx context.Context, asOf string) (*dto.StatsResponse, error) {
	date := model.Today()
	if asOf != "" {
		parsed, err := model.ParseDate(asOf)
		if err != nil {
			return nil, ErrAttendanceBadDate
		}
		date = parsed
	}

	totalStudents, err := s.repo.Student.CountActive(ctx)
	if err != nil {
		s.logger.Error("统计在册学生数失败", zap.Error(err))
		return nil, err
	}

	presentToday, err := s.repo.Attendance.CountByDate(ctx, date, true)
	if err != nil {
		s.logger.Error("统计当日出勤数失败", zap.Error(err))
		return nil, err
	}

	absentToday, err := s.repo.Attendance.CountByDate(ctx, date, false)
	if err != nil {
		s.logger.Error("统计当日缺勤数失败", zap.Error(err))
		return nil, err
	}

	totalSections, err := s.repo.Student.CountActiveSections(ctx)
	if err != nil {
		s.logger.Error("统计班级数失败", zap.Error(err))
		return nil, err
	}

	return &dto.StatsResponse{
		TotalStudents: totalStudents,
		PresentToday:  presentToday,
		AbsentToday:   absentToday,
		TotalSections: totalSections,
	}, nil
}
