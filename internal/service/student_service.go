package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"club-attendance/backend/config"
	"club-attendance/backend/internal/dto"
	"club-attendance/backend/internal/model"
	"club-attendance/backend/internal/repository"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound  = errors.New("学生不存在")
	ErrStudentIDExists  = errors.New("学号已存在")
	ErrSectionInvalid   = errors.New("班级不在允许列表内")
	ErrShiftInvalid     = errors.New("班次不在允许列表内")
	ErrStudentIDFormat  = errors.New("学号格式不正确")
	ErrStudentHasNoName = errors.New("姓名不能为空")
)

// StudentService 学生名册业务接口
type StudentService interface {
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, error)
	Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
	BulkCreate(ctx context.Context, req *dto.BulkCreateStudentsRequest) (*dto.BulkCreateStudentsResponse, error)
	ImportFromSheetURL(ctx context.Context, sheetURL string) (*dto.ImportStudentsResponse, error)
	ParseRosterFile(reader io.Reader) ([]RosterRow, error)
	ImportRoster(ctx context.Context, rows []RosterRow) (*dto.ImportStudentsResponse, error)
}

type studentService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.ListActive(ctx, req.Section)
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	if err := s.validateRosterFields(req.Section, req.Shift, req.StudentID); err != nil {
		return nil, err
	}

	// 检查学号唯一性
	if _, err := s.repo.Student.GetByStudentID(ctx, req.StudentID); err == nil {
		return nil, ErrStudentIDExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student := s.buildStudent(req)
	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	return toStudentResponse(student), nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 应用更新字段（仅更新非 nil 字段）
	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrStudentHasNoName
		}
		student.Name = *req.Name
	}
	if req.StudentID != nil && *req.StudentID != student.StudentID {
		if pattern := s.cfg.Roster.StudentIDPattern(); pattern != nil && !pattern.MatchString(*req.StudentID) {
			return nil, ErrStudentIDFormat
		}
		// 检查新学号唯一性
		existing, err := s.repo.Student.GetByStudentID(ctx, *req.StudentID)
		if err == nil && existing.ID != id {
			return nil, ErrStudentIDExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		student.StudentID = *req.StudentID
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Section != nil {
		if !s.cfg.Roster.HasSection(*req.Section) {
			return nil, ErrSectionInvalid
		}
		student.Section = *req.Section
	}
	if req.Shift != nil {
		if !s.cfg.Roster.HasShift(*req.Shift) {
			return nil, ErrShiftInvalid
		}
		student.Shift = *req.Shift
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toStudentResponse(student), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 硬删除学生，其全部考勤记录随外键级联一并删除
func (s *studentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Student.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── BulkCreate ──────────────────────

// BulkCreate 批量创建学生：逐条独立处理，单条失败不影响其余条目，
// 也不回滚已成功条目（响应同时携带成功数与逐条错误）
func (s *studentService) BulkCreate(ctx context.Context, req *dto.BulkCreateStudentsRequest) (*dto.BulkCreateStudentsResponse, error) {
	resp := &dto.BulkCreateStudentsResponse{
		Errors:   []string{},
		Students: []dto.StudentResponse{},
	}

	for i := range req.Students {
		item := &req.Students[i]
		rowNo := i + 1

		if err := s.validateRosterFields(item.Section, item.Shift, item.StudentID); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: %v", rowNo, err))
			continue
		}

		// 检查学号唯一性
		if _, err := s.repo.Student.GetByStudentID(ctx, item.StudentID); err == nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: 学号 %s 已存在", rowNo, item.StudentID))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: 创建学生失败", rowNo))
			continue
		}

		student := s.buildStudent(item)
		if err := s.repo.Student.Create(ctx, student); err != nil {
			s.logger.Error("批量创建学生写入失败", zap.Int("row", rowNo), zap.Error(err))
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: 创建学生失败", rowNo))
			continue
		}

		resp.Created++
		resp.Students = append(resp.Students, *toStudentResponse(student))
	}

	return resp, nil
}

// ── 内部辅助方法 ──

// validateRosterFields 校验班级/班次/学号格式（班次为空时跳过，走默认值）
func (s *studentService) validateRosterFields(section, shift, studentID string) error {
	if !s.cfg.Roster.HasSection(section) {
		return ErrSectionInvalid
	}
	if shift != "" && !s.cfg.Roster.HasShift(shift) {
		return ErrShiftInvalid
	}
	if pattern := s.cfg.Roster.StudentIDPattern(); pattern != nil && !pattern.MatchString(studentID) {
		return ErrStudentIDFormat
	}
	return nil
}

func (s *studentService) buildStudent(req *dto.CreateStudentRequest) *model.Student {
	shift := req.Shift
	if shift == "" {
		shift = s.cfg.Roster.DefaultShift
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return &model.Student{
		Name:      req.Name,
		StudentID: req.StudentID,
		Email:     req.Email,
		Section:   req.Section,
		Shift:     shift,
		IsActive:  isActive,
	}
}

// toStudentResponse 将 model.Student 转换为 dto.StudentResponse
func toStudentResponse(student *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:        student.ID,
		Name:      student.Name,
		StudentID: student.StudentID,
		Email:     student.Email,
		Section:   student.Section,
		Shift:     student.Shift,
		IsActive:  student.IsActive,
		CreatedAt: student.CreatedAt.Format(time.RFC3339),
	}
}
