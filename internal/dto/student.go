package dto

// ── 学生模块 DTO ──

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	Section string `form:"section" binding:"omitempty,max=50"`
}

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	Name      string `json:"name"       binding:"required,min=1,max=100"`
	StudentID string `json:"student_id" binding:"required,max=20"`
	Email     string `json:"email"      binding:"omitempty,email"`
	Section   string `json:"section"    binding:"required,max=50"`
	Shift     string `json:"shift"      binding:"omitempty,max=20"`
	IsActive  *bool  `json:"is_active"  binding:"omitempty"`
}

// UpdateStudentRequest 更新学生请求（仅更新非 nil 字段）
type UpdateStudentRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=1,max=100"`
	StudentID *string `json:"student_id" binding:"omitempty,max=20"`
	Email     *string `json:"email"      binding:"omitempty,email"`
	Section   *string `json:"section"    binding:"omitempty,max=50"`
	Shift     *string `json:"shift"      binding:"omitempty,max=20"`
	IsActive  *bool   `json:"is_active"  binding:"omitempty"`
}

// BulkCreateStudentsRequest 批量创建学生请求
type BulkCreateStudentsRequest struct {
	Students []CreateStudentRequest `json:"students" binding:"required,min=1,dive"`
}

// BulkCreateStudentsResponse 批量创建学生响应（部分成功）
// Created 与 Errors 需要调用方同时检查
type BulkCreateStudentsResponse struct {
	Created  int               `json:"created"`
	Errors   []string          `json:"errors"`
	Students []StudentResponse `json:"students"`
}

// ImportSheetRequest 从公开在线表格导入学生请求
type ImportSheetRequest struct {
	SheetURL string `json:"sheet_url" binding:"required,url"`
}

// ImportStudentsResponse 名册导入响应
// Skipped 为缺少必填字段被跳过的行数，Created/Errors 语义同批量创建
type ImportStudentsResponse struct {
	Total    int               `json:"total"`
	Skipped  int               `json:"skipped"`
	Created  int               `json:"created"`
	Errors   []string          `json:"errors"`
	Students []StudentResponse `json:"students"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Email     string `json:"email,omitempty"`
	Section   string `json:"section"`
	Shift     string `json:"shift"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}
