package model

import "time"

// AttendanceRecord 考勤记录表 — 对应 attendance
// (student_id, date) 为复合自然键，由数据库唯一约束保证；
// 未标记的学生不落库，"未标记"状态仅存在于查询/报表层。
type AttendanceRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"id"`
	StudentID string    `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_student_date" json:"student_id"`
	Date      DateOnly  `gorm:"type:date;not null;uniqueIndex:uq_attendance_student_date" json:"date"`
	IsPresent bool      `gorm:"not null"                                        json:"is_present"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"created_at"`

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance" }
