package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"club-attendance/backend/internal/dto"
)

// ── 名册导入业务错误 ──

var (
	ErrImportBadURL      = errors.New("无效的在线表格链接")
	ErrImportFetchFail   = errors.New("拉取在线表格失败（请确认表格已公开可见）")
	ErrImportNoData      = errors.New("表格无数据行（第一行为表头）")
	ErrImportBadHeader   = errors.New("表头缺少必要列（姓名/学号/班级）")
	ErrImportTooManyRows = errors.New("数据行数超过上限")
)

// RosterRow 名册导入解析后的单行数据
type RosterRow struct {
	Row       int // 源表格中的行号（含表头，从 1 起）
	Name      string
	StudentID string
	Email     string
	Section   string
	Shift     string
}

// sheetIDPattern 从 Google Sheets 分享链接中提取表格 ID
var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9\-_]+)`)

// emailPattern 邮箱格式校验（与 HTTP 层 binding:"email" 保持同级约束）
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ────────────────────── ImportFromSheetURL ──────────────────────

// ImportFromSheetURL 从公开的 Google Sheets 链接导入学生名册：
// 提取表格 ID → 拉取 CSV 导出 → 表头启发式映射 → 走批量创建路径（部分成功）
func (s *studentService) ImportFromSheetURL(ctx context.Context, sheetURL string) (*dto.ImportStudentsResponse, error) {
	m := sheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return nil, ErrImportBadURL
	}
	csvURL := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", m[1])

	fetchCtx := ctx
	if s.cfg.Import.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.Import.FetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.logger.Warn("拉取在线表格失败", zap.String("url", csvURL), zap.Error(err))
		return nil, ErrImportFetchFail
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("在线表格返回异常状态码",
			zap.String("url", csvURL), zap.Int("status", resp.StatusCode))
		return nil, ErrImportFetchFail
	}

	rows, err := s.parseRosterCSV(resp.Body)
	if err != nil {
		return nil, err
	}

	return s.ImportRoster(ctx, rows)
}

// ────────────────────── ParseRosterFile ──────────────────────

// ParseRosterFile 解析上传的 .xlsx 名册文件，返回解析后的行数据
func (s *studentService) ParseRosterFile(reader io.Reader) ([]RosterRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	return s.mapRosterRows(excelRows)
}

// parseRosterCSV 解析 CSV 名册内容
func (s *studentService) parseRosterCSV(reader io.Reader) ([]RosterRow, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1 // 允许行宽不齐
	r.TrimLeadingSpace = true

	var raw [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析CSV失败: %w", err)
		}
		raw = append(raw, record)
	}

	return s.mapRosterRows(raw)
}

// mapRosterRows 将原始表格行映射为 RosterRow（表头启发式 + 全空行跳过）
func (s *studentService) mapRosterRows(raw [][]string) ([]RosterRow, error) {
	if len(raw) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseRosterHeader(raw[0])
	if colIndex["name"] < 0 || colIndex["student_id"] < 0 || colIndex["section"] < 0 {
		return nil, ErrImportBadHeader
	}

	pick := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []RosterRow
	for i := 1; i < len(raw); i++ {
		item := RosterRow{
			Row:       i + 1,
			Name:      pick(raw[i], "name"),
			StudentID: pick(raw[i], "student_id"),
			Email:     pick(raw[i], "email"),
			Section:   pick(raw[i], "section"),
			Shift:     pick(raw[i], "shift"),
		}

		// 跳过全空行
		if item.Name == "" && item.StudentID == "" && item.Email == "" && item.Section == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > s.cfg.Import.MaxRows {
		return nil, fmt.Errorf("%w（%d 行，上限 %d 行）", ErrImportTooManyRows, len(rows), s.cfg.Import.MaxRows)
	}

	return rows, nil
}

// parseRosterHeader 解析表头，返回列名 -> 列索引映射
// 支持常见别名（外部表格的列名不受控）
func parseRosterHeader(header []string) map[string]int {
	idx := map[string]int{
		"name":       -1,
		"student_id": -1,
		"email":      -1,
		"section":    -1,
		"shift":      -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch lower {
		case "name", "fullname", "full name", "student name", "姓名":
			if idx["name"] < 0 {
				idx["name"] = i
			}
		case "studentid", "student id", "student_id", "id", "学号":
			if idx["student_id"] < 0 {
				idx["student_id"] = i
			}
		case "email", "email address", "邮箱":
			if idx["email"] < 0 {
				idx["email"] = i
			}
		case "section", "班级":
			if idx["section"] < 0 {
				idx["section"] = i
			}
		case "shift", "班次":
			if idx["shift"] < 0 {
				idx["shift"] = i
			}
		}
	}
	return idx
}

// ────────────────────── ImportRoster ──────────────────────

// ImportRoster 将解析后的名册行导入学生表：
// 缺少必填字段的行计入 Skipped，其余逐条走创建路径（部分成功，不回滚）
func (s *studentService) ImportRoster(ctx context.Context, rows []RosterRow) (*dto.ImportStudentsResponse, error) {
	resp := &dto.ImportStudentsResponse{
		Total:    len(rows),
		Errors:   []string{},
		Students: []dto.StudentResponse{},
	}

	var items []dto.CreateStudentRequest
	var rowNos []int
	for _, row := range rows {
		// 必填字段缺失的行直接跳过（外部表格质量不受控，不作为错误上报）
		if row.Name == "" || row.StudentID == "" || row.Section == "" {
			resp.Skipped++
			continue
		}
		// 邮箱格式无效时置空，不因可选字段拒绝整行
		if row.Email != "" && !emailPattern.MatchString(row.Email) {
			s.logger.Debug("导入行邮箱格式无效，已置空",
				zap.Int("row", row.Row), zap.String("email", row.Email))
			row.Email = ""
		}
		items = append(items, dto.CreateStudentRequest{
			Name:      row.Name,
			StudentID: row.StudentID,
			Email:     row.Email,
			Section:   row.Section,
			Shift:     row.Shift,
		})
		rowNos = append(rowNos, row.Row)
	}

	for i := range items {
		item := &items[i]
		rowNo := rowNos[i]

		created, err := s.Create(ctx, item)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: %v", rowNo, importErrorReason(err)))
			continue
		}
		resp.Created++
		resp.Students = append(resp.Students, *created)
	}

	return resp, nil
}

// importErrorReason 将业务错误转换为导入错误描述（屏蔽底层存储错误细节）
func importErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrStudentIDExists),
		errors.Is(err, ErrSectionInvalid),
		errors.Is(err, ErrShiftInvalid),
		errors.Is(err, ErrStudentIDFormat):
		return err.Error()
	default:
		return "创建学生失败"
	}
}
