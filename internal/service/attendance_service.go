package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"club-attendance/backend/internal/dto"
	"club-attendance/backend/internal/model"
	"club-attendance/backend/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceBadDate  = errors.New("无效的日期格式")
	ErrAttendanceBadRange = errors.New("起始日期不能晚于结束日期")
)

// AttendanceService 考勤台账业务接口
type AttendanceService interface {
	// Mark 标记考勤：同一 (student_id, date) 已存在时原地覆盖 is_present，
	// 不产生新记录；不存在时插入新记录
	Mark(ctx context.Context, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error)
	BulkMark(ctx context.Context, req *dto.BulkMarkAttendanceRequest) (*dto.BulkMarkAttendanceResponse, error)
	ListByDate(ctx context.Context, date string, section string) ([]dto.AttendanceWithStudentResponse, error)
	ListByRange(ctx context.Context, start, end string) ([]dto.AttendanceWithStudentResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, ErrAttendanceBadDate
	}

	// 学生必须存在（外键约束最终兜底，这里先给出领域错误）
	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", req.StudentID), zap.Error(err))
		return nil, err
	}

	record := &model.AttendanceRecord{
		StudentID: req.StudentID,
		Date:      date,
		IsPresent: *req.IsPresent,
	}
	if err := s.repo.Attendance.Upsert(ctx, record); err != nil {
		s.logger.Error("写入考勤记录失败",
			zap.String("student_id", req.StudentID),
			zap.String("date", date.String()),
			zap.Error(err))
		return nil, err
	}

	return toAttendanceResponse(record), nil
}

// ────────────────────── BulkMark ──────────────────────

// BulkMark 批量标记考勤：按序逐条独立执行，单条失败继续处理后续条目，
// 整批不构成事务（响应同时携带成功数与逐条错误）
func (s *attendanceService) BulkMark(ctx context.Context, req *dto.BulkMarkAttendanceRequest) (*dto.BulkMarkAttendanceResponse, error) {
	resp := &dto.BulkMarkAttendanceResponse{
		Total:   len(req.AttendanceRecords),
		Records: []dto.AttendanceResponse{},
		Errors:  []string{},
	}

	for i := range req.AttendanceRecords {
		item := &req.AttendanceRecords[i]

		record, err := s.Mark(ctx, item)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 条: %v", i+1, markErrorReason(err)))
			continue
		}
		resp.Success++
		resp.Records = append(resp.Records, *record)
	}

	return resp, nil
}

// markErrorReason 将业务错误转换为批量响应中的错误描述
func markErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrStudentNotFound), errors.Is(err, ErrAttendanceBadDate):
		return err.Error()
	default:
		return "写入考勤记录失败"
	}
}

// ────────────────────── ListByDate ──────────────────────

func (s *attendanceService) ListByDate(ctx context.Context, date string, section string) ([]dto.AttendanceWithStudentResponse, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, ErrAttendanceBadDate
	}

	records, err := s.repo.Attendance.ListByDate(ctx, d, section)
	if err != nil {
		s.logger.Error("查询当日考勤失败", zap.String("date", d.String()), zap.Error(err))
		return nil, err
	}

	return toAttendanceWithStudentResponses(records), nil
}

// ────────────────────── ListByRange ──────────────────────

func (s *attendanceService) ListByRange(ctx context.Context, start, end string) ([]dto.AttendanceWithStudentResponse, error) {
	startDate, err := model.ParseDate(start)
	if err != nil {
		return nil, ErrAttendanceBadDate
	}
	endDate, err := model.ParseDate(end)
	if err != nil {
		return nil, ErrAttendanceBadDate
	}
	if startDate > endDate {
		return nil, ErrAttendanceBadRange
	}

	records, err := s.repo.Attendance.ListByDateRange(ctx, startDate, endDate)
	if err != nil {
		s.logger.Error("查询区间考勤失败",
			zap.String("start", startDate.String()),
			zap.String("end", endDate.String()),
			zap.Error(err))
		return nil, err
	}

	return toAttendanceWithStudentResponses(records), nil
}

// ── 内部辅助方法 ──

func toAttendanceResponse(record *model.AttendanceRecord) *dto.AttendanceResponse {
	return &dto.AttendanceResponse{
		ID:        record.ID,
		StudentID: record.StudentID,
		Date:      record.Date.String(),
		IsPresent: record.IsPresent,
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
	}
}

func toAttendanceWithStudentResponses(records []model.AttendanceRecord) []dto.AttendanceWithStudentResponse {
	result := make([]dto.AttendanceWithStudentResponse, 0, len(records))
	for i := range records {
		item := dto.AttendanceWithStudentResponse{
			AttendanceResponse: *toAttendanceResponse(&records[i]),
		}
		if records[i].Student != nil {
			item.Student = *toStudentResponse(records[i].Student)
		}
		result = append(result, item)
	}
	return result
}
