package dto

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 标记考勤请求
// IsPresent 用指针以区分 false 与缺省
type MarkAttendanceRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Date      string `json:"date"       binding:"required"`
	IsPresent *bool  `json:"is_present" binding:"required"`
}

// BulkMarkAttendanceRequest 批量标记考勤请求
type BulkMarkAttendanceRequest struct {
	AttendanceRecords []MarkAttendanceRequest `json:"attendance_records" binding:"required,min=1,dive"`
}

// BulkMarkAttendanceResponse 批量标记考勤响应（部分成功）
type BulkMarkAttendanceResponse struct {
	Total   int                  `json:"total"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Records []AttendanceResponse `json:"records"`
	Errors  []string             `json:"errors"`
}

// AttendanceListRequest 按日查询考勤的过滤参数
type AttendanceListRequest struct {
	Section string `form:"section" binding:"omitempty,max=50"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Date      string `json:"date"`
	IsPresent bool   `json:"is_present"`
	CreatedAt string `json:"created_at"`
}

// AttendanceWithStudentResponse 考勤记录 + 学生信息（按日/区间查询）
type AttendanceWithStudentResponse struct {
	AttendanceResponse
	Student StudentResponse `json:"student"`
}

// ── 统计模块 DTO ──

// StatsResponse 当日考勤统计
// 未标记的学生不计入 present/absent 任何一侧
type StatsResponse struct {
	TotalStudents int64 `json:"total_students"`
	PresentToday  int64 `json:"present_today"`
	AbsentToday   int64 `json:"absent_today"`
	TotalSections int64 `json:"total_sections"`
}

// ── 报表模块 DTO ──

// ExportReportRequest 报表导出查询参数
// 起止日期缺省时导出当日记录
type ExportReportRequest struct {
	StartDate string `form:"start_date" binding:"omitempty"`
	EndDate   string `form:"end_date"   binding:"omitempty"`
	Section   string `form:"section"    binding:"omitempty,max=50"`
}
