package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"club-attendance/backend/internal/dto"
	"club-attendance/backend/internal/service"
	"club-attendance/backend/pkg/response"
)

// StudentHandler 学生名册模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 学生列表（仅在册学生，可按班级过滤）
// GET /api/v1/students?section=
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	students, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// CreateStudent 创建学生
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, 10001, "参数校验失败", bindingErrors(err))
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent 更新学生（部分字段）
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, 10001, "参数校验失败", bindingErrors(err))
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent 删除学生（级联删除其全部考勤记录）
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// BulkCreateStudents 批量创建学生（部分成功）
// POST /api/v1/students/bulk
func (h *StudentHandler) BulkCreateStudents(c *gin.Context) {
	var req dto.BulkCreateStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, 10001, "参数校验失败", bindingErrors(err))
		return
	}

	result, err := h.studentSvc.BulkCreate(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ImportSheet 从公开在线表格导入学生名册
// POST /api/v1/students/import-sheet
func (h *StudentHandler) ImportSheet(c *gin.Context) {
	var req dto.ImportSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, 10001, "参数校验失败", bindingErrors(err))
		return
	}

	result, err := h.studentSvc.ImportFromSheetURL(c.Request.Context(), req.SheetURL)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportFile 从上传的 .xlsx 文件导入学生名册
// POST /api/v1/students/import （multipart 字段名 file）
func (h *StudentHandler) ImportFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 20011, "无法读取上传文件")
		return
	}
	defer file.Close()

	rows, err := h.studentSvc.ParseRosterFile(file)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	result, err := h.studentSvc.ImportRoster(c.Request.Context(), rows)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// handleStudentError 统一处理学生模块业务错误
func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 20001, "学生不存在")
	case errors.Is(err, service.ErrStudentIDExists):
		response.BadRequest(c, 20002, "学号已存在")
	case errors.Is(err, service.ErrSectionInvalid):
		response.BadRequest(c, 20003, "班级不在允许列表内")
	case errors.Is(err, service.ErrShiftInvalid):
		response.BadRequest(c, 20004, "班次不在允许列表内")
	case errors.Is(err, service.ErrStudentIDFormat):
		response.BadRequest(c, 20005, "学号格式不正确")
	case errors.Is(err, service.ErrStudentHasNoName):
		response.BadRequest(c, 20006, "姓名不能为空")
	default:
		response.InternalError(c)
	}
}

// handleImportError 统一处理名册导入业务错误
func (h *StudentHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportBadURL):
		response.BadRequest(c, 20011, "无效的在线表格链接")
	case errors.Is(err, service.ErrImportFetchFail):
		response.BadRequest(c, 20012, "拉取在线表格失败（请确认表格已公开可见）")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 20013, "表格无数据行")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 20014, "表头缺少必要列（姓名/学号/班级）")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 20015, "数据行数超过上限")
	default:
		response.InternalError(c)
	}
}
