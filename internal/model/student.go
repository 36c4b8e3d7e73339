package model

import "time"

// Student 学生表 — 对应 students
type Student struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:text;not null"                             json:"name"`
	StudentID string    `gorm:"type:text;not null;uniqueIndex"                 json:"student_id"` // 对外学号，全局唯一
	Email     string    `gorm:"type:text"                                      json:"email,omitempty"`
	Section   string    `gorm:"type:text;not null"                             json:"section"`
	Shift     string    `gorm:"type:text;not null;default:'Shift 1'"           json:"shift"`
	IsActive  bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
