package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"club-attendance/backend/internal/dto"
	"club-attendance/backend/internal/service"
	"club-attendance/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// MarkAttendance 标记考勤（同一学生同一天重复标记时原地覆盖）
// POST /api/v1/attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, 10001, "参数校验失败", bindingErrors(err))
		return
	}

	record, err := h.attendanceSvc.Mark(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// BulkMarkAttendance 批量标记考勤（部分成功）
// POST /api/v1/attendance/bulk
func (h *AttendanceHandler) BulkMarkAttendance(c *gin.Context) {
	var req dto.BulkMarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, 10001, "参数校验失败", bindingErrors(err))
		return
	}

	result, err := h.attendanceSvc.BulkMark(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetAttendanceByDate 查询某日考勤（含学生信息，可按班级过滤）
// GET /api/v1/attendance/:date?section=
func (h *AttendanceHandler) GetAttendanceByDate(c *gin.Context) {
	date := c.Param("date")

	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	records, err := h.attendanceSvc.ListByDate(c.Request.Context(), date, req.Section)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// GetAttendanceByRange 查询闭区间内的考勤（含学生信息）
// GET /api/v1/attendance/range/:start/:end
func (h *AttendanceHandler) GetAttendanceByRange(c *gin.Context) {
	start := c.Param("start")
	end := c.Param("end")

	records, err := h.attendanceSvc.ListByRange(c.Request.Context(), start, end)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// handleAttendanceError 统一处理考勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 20001, "学生不存在")
	case errors.Is(err, service.ErrAttendanceBadDate):
		response.BadRequest(c, 21001, "无效的日期格式（应为 YYYY-MM-DD）")
	case errors.Is(err, service.ErrAttendanceBadRange):
		response.BadRequest(c, 21002, "起始日期不能晚于结束日期")
	default:
		response.InternalError(c)
	}
}
