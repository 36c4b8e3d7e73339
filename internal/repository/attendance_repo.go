package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"club-attendance/backend/internal/model"
)

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	Upsert(ctx context.Context, record *model.AttendanceRecord) error
	ListByDate(ctx context.Context, date model.DateOnly, section string) ([]model.AttendanceRecord, error)
	ListByDateRange(ctx context.Context, start, end model.DateOnly) ([]model.AttendanceRecord, error)
	CountByDate(ctx context.Context, date model.DateOnly, isPresent bool) (int64, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// Upsert 以 (student_id, date) 复合键原子写入：
// 已存在则仅覆盖 is_present，不产生新 id；不存在则插入新记录。
// 依赖唯一约束 uq_attendance_student_date，并通过 RETURNING 回填实际行。
func (r *attendanceRepo) Upsert(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"is_present": record.IsPresent}),
			},
			clause.Returning{},
		).
		Create(record).Error
}

// ListByDate 查询某日考勤（含学生信息），按学生姓名排序
func (r *attendanceRepo) ListByDate(ctx context.Context, date model.DateOnly, section string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord

	db := r.db.WithContext(ctx).
		Joins("JOIN students ON students.id = attendance.student_id").
		Where("attendance.date = ?", date).
		Preload("Student")
	if section != "" {
		db = db.Where("students.section = ?", section)
	}

	if err := db.Order("students.name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByDateRange 查询闭区间 [start, end] 内的考勤（含学生信息）
// 按日期倒序、姓名正序排列
func (r *attendanceRepo) ListByDateRange(ctx context.Context, start, end model.DateOnly) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord

	err := r.db.WithContext(ctx).
		Joins("JOIN students ON students.id = attendance.student_id").
		Where("attendance.date >= ? AND attendance.date <= ?", start, end).
		Preload("Student").
		Order("attendance.date DESC").
		Order("students.name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepo) CountByDate(ctx context.Context, date model.DateOnly, isPresent bool) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("date = ? AND is_present = ?", date, isPresent).
		Count(&total).Error
	return total, err
}
