package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"club-attendance/backend/internal/dto"
	"club-attendance/backend/internal/model"
	"club-attendance/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// 报表单元格的三态取值：出勤 / 缺勤 / 未标记。
// "未标记"由记录缺失表达，仅存在于报表层，不落库。
const (
	statusPresent   = "Present"
	statusAbsent    = "Absent"
	statusNotMarked = "Not Marked"
)

// ExportService 考勤报表导出业务接口
//
// 设计说明：
//   - 报表以学生为行、日期为列的矩阵呈现，列集合为区间内所有出现过的日期，
//     每行列数一致（某学生某日无记录时填 "Not Marked"）
//   - 区间内没有任何记录的学生不出现在报表中（报表由考勤行驱动，而非全量名册）
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportReport 导出考勤报表为 Excel；起止日期缺省时导出当日记录
	ExportReport(ctx context.Context, req *dto.ExportReportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportReport — 导出考勤报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Attendance Report"
//   - 表头: | Name | Student ID | Shift | Section | Email | <日期...> | Total Present | Total Absent | Attendance % |
//   - 日期列按字典序升序（ISO 日期字典序即时间序）
//   - 行按学生姓名排序
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportReport(ctx context.Context, req *dto.ExportReportRequest) (*bytes.Buffer, string, error) {
	// 1. 查询考勤记录（含学生信息）
	var records []model.AttendanceRecord
	var err error

	// 只提供 start_date/end_date 其一时视为未指定区间，
	// 有意回退到当日报表而非报 400
	if req.StartDate != "" && req.EndDate != "" {
		start, perr := model.ParseDate(req.StartDate)
		if perr != nil {
			return nil, "", ErrAttendanceBadDate
		}
		end, perr := model.ParseDate(req.EndDate)
		if perr != nil {
			return nil, "", ErrAttendanceBadDate
		}
		if start > end {
			return nil, "", ErrAttendanceBadRange
		}
		records, err = s.repo.Attendance.ListByDateRange(ctx, start, end)
	} else {
		records, err = s.repo.Attendance.ListByDate(ctx, model.Today(), "")
	}
	if err != nil {
		s.logger.Error("查询报表数据失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 班级过滤
	if req.Section != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Student != nil && rec.Student.Section == req.Section {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	// 3. 透视：逐条记录 → 学生 × 日期矩阵
	matrix := buildReportMatrix(records)

	// 4. 渲染 Excel
	buf, err := renderReportExcel(matrix)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance-report-%s.xlsx", model.Today())
	return buf, filename, nil
}

// ── 报表透视 ──

// pivotRow 单个学生的透视行：基础信息 + 日期 → 出勤映射
type pivotRow struct {
	name      string
	studentID string
	shift     string
	section   string
	email     string
	marks     map[model.DateOnly]bool
}

// buildReportMatrix 将考勤联接行透视为矩阵（表头 + 每学生一行）。
// 列集合为全部记录中出现过的日期（并集），保证每行列数一致；
// 行按学生姓名排序（联接结果的顺序是实现细节，不构成契约）。
func buildReportMatrix(records []model.AttendanceRecord) [][]interface{} {
	rowsByStudent := make(map[string]*pivotRow)
	var rows []*pivotRow
	dateSet := make(map[model.DateOnly]struct{})

	for i := range records {
		rec := &records[i]
		if rec.Student == nil {
			continue
		}
		dateSet[rec.Date] = struct{}{}

		row, ok := rowsByStudent[rec.StudentID]
		if !ok {
			row = &pivotRow{
				name:      rec.Student.Name,
				studentID: rec.Student.StudentID,
				shift:     rec.Student.Shift,
				section:   rec.Student.Section,
				email:     rec.Student.Email,
				marks:     make(map[model.DateOnly]bool),
			}
			rowsByStudent[rec.StudentID] = row
			rows = append(rows, row)
		}
		row.marks[rec.Date] = rec.IsPresent
	}

	// 共享列头：全部日期升序
	dates := make([]model.DateOnly, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].name != rows[j].name {
			return rows[i].name < rows[j].name
		}
		return rows[i].studentID < rows[j].studentID
	})

	header := []interface{}{"Name", "Student ID", "Shift", "Section", "Email"}
	for _, d := range dates {
		header = append(header, d.String())
	}
	header = append(header, "Total Present", "Total Absent", "Attendance %")

	matrix := [][]interface{}{header}

	for _, row := range rows {
		cells := []interface{}{row.name, row.studentID, row.shift, row.section, row.email}

		totalPresent := 0
		totalDays := 0
		for _, d := range dates {
			status := statusNotMarked
			if present, ok := row.marks[d]; ok {
				totalDays++
				if present {
					totalPresent++
					status = statusPresent
				} else {
					status = statusAbsent
				}
			}
			cells = append(cells, status)
		}

		// totalDays = 0 时百分比定义为 "0%"，避免除零
		percentage := "0%"
		if totalDays > 0 {
			percentage = fmt.Sprintf("%.1f%%", float64(totalPresent)/float64(totalDays)*100)
		}

		cells = append(cells, totalPresent, totalDays-totalPresent, percentage)
		matrix = append(matrix, cells)
	}

	return matrix
}

// ── Excel 渲染 ──

const reportSheetName = "Attendance Report"

func renderReportExcel(matrix [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(reportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽：前五列为学生信息，其余为日期与合计列
	f.SetColWidth(reportSheetName, "A", "A", 20)
	f.SetColWidth(reportSheetName, "B", "B", 14)
	f.SetColWidth(reportSheetName, "C", "D", 12)
	f.SetColWidth(reportSheetName, "E", "E", 24)
	if len(matrix) > 0 && len(matrix[0]) > 5 {
		last, _ := excelize.ColumnNumberToName(len(matrix[0]))
		f.SetColWidth(reportSheetName, "F", last, 12)
	}

	// 冻结表头行
	if err := f.SetPanes(reportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	// 表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, row := range matrix {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(reportSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	if len(matrix) > 0 {
		lastHeaderCell, _ := excelize.CoordinatesToCellName(len(matrix[0]), 1)
		f.SetCellStyle(reportSheetName, "A1", lastHeaderCell, headerStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
