package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"club-attendance/backend/internal/dto"
	"club-attendance/backend/internal/model"
	"club-attendance/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, StudentService, AttendanceService) {
	studentRepo := newMockStudentRepo()
	repo := &repository.Repository{
		Student:    studentRepo,
		Attendance: newMockAttendanceRepo(studentRepo),
	}
	logger := zap.NewNop()
	return NewExportService(repo, logger),
		NewStudentService(newTestConfig(), repo, logger),
		NewAttendanceService(repo, logger)
}

func fixtureRecord(name, studentID, section string, date model.DateOnly, present bool) model.AttendanceRecord {
	return model.AttendanceRecord{
		ID:        "att-" + name + "-" + date.String(),
		StudentID: "stu-" + studentID,
		Date:      date,
		IsPresent: present,
		Student: &model.Student{
			ID:        "stu-" + studentID,
			Name:      name,
			StudentID: studentID,
			Section:   section,
			Shift:     "Shift 1",
			Email:     name + "@example.com",
		},
	}
}

// ── buildReportMatrix 测试 ──

func TestBuildReportMatrix_ColumnConsistency(t *testing.T) {
	// Alice 有两天记录，Bob 只有一天：两行列数必须一致
	records := []model.AttendanceRecord{
		fixtureRecord("Alice", "24SJCCC001", "BBA A", "2026-03-01", true),
		fixtureRecord("Alice", "24SJCCC001", "BBA A", "2026-03-02", false),
		fixtureRecord("Bob", "24SJCCC002", "BBA A", "2026-03-02", true),
	}

	matrix := buildReportMatrix(records)
	if len(matrix) != 3 {
		t.Fatalf("期望表头+2行，实际=%d行", len(matrix))
	}

	// 表头: 5基础列 + 2日期列 + 3合计列
	wantCols := 5 + 2 + 3
	for i, row := range matrix {
		if len(row) != wantCols {
			t.Errorf("第%d行期望%d列，实际=%d列", i, wantCols, len(row))
		}
	}

	// 日期列升序
	if matrix[0][5] != "2026-03-01" || matrix[0][6] != "2026-03-02" {
		t.Errorf("期望日期列升序，实际=%v,%v", matrix[0][5], matrix[0][6])
	}

	// Bob 在 2026-03-01 无记录，应填 Not Marked
	bobRow := matrix[2]
	if bobRow[0] != "Bob" {
		t.Fatalf("期望第2数据行为Bob，实际=%v", bobRow[0])
	}
	if bobRow[5] != statusNotMarked {
		t.Errorf("期望Bob首日为%s，实际=%v", statusNotMarked, bobRow[5])
	}
	if bobRow[6] != statusPresent {
		t.Errorf("期望Bob次日为%s，实际=%v", statusPresent, bobRow[6])
	}
}

func TestBuildReportMatrix_RowsSortedByName(t *testing.T) {
	records := []model.AttendanceRecord{
		fixtureRecord("Carol", "24SJCCC003", "BBA A", "2026-03-01", true),
		fixtureRecord("Alice", "24SJCCC001", "BBA A", "2026-03-01", true),
		fixtureRecord("Bob", "24SJCCC002", "BBA A", "2026-03-01", false),
	}

	matrix := buildReportMatrix(records)
	if len(matrix) != 4 {
		t.Fatalf("期望表头+3行，实际=%d行", len(matrix))
	}
	names := []interface{}{matrix[1][0], matrix[2][0], matrix[3][0]}
	if names[0] != "Alice" || names[1] != "Bob" || names[2] != "Carol" {
		t.Errorf("期望按姓名排序，实际=%v", names)
	}
}

func TestBuildReportMatrix_AttendancePercentage(t *testing.T) {
	// 4天中3天出勤、1天缺勤 → 75.0%；未标记日不参与分母
	records := []model.AttendanceRecord{
		fixtureRecord("Alice", "24SJCCC001", "BBA A", "2026-03-01", true),
		fixtureRecord("Alice", "24SJCCC001", "BBA A", "2026-03-02", true),
		fixtureRecord("Alice", "24SJCCC001", "BBA A", "2026-03-03", true),
		fixtureRecord("Alice", "24SJCCC001", "BBA A", "2026-03-04", false),
		// Bob 撑出第5个日期列，Alice 该日未标记
		fixtureRecord("Bob", "24SJCCC002", "BBA A", "2026-03-05", true),
	}

	matrix := buildReportMatrix(records)
	aliceRow := matrix[1]
	if aliceRow[0] != "Alice" {
		t.Fatalf("期望首行为Alice，实际=%v", aliceRow[0])
	}

	cols := len(aliceRow)
	totalPresent := aliceRow[cols-3]
	totalAbsent := aliceRow[cols-2]
	percentage := aliceRow[cols-1]

	if totalPresent != 3 {
		t.Errorf("期望Total Present=3，实际=%v", totalPresent)
	}
	if totalAbsent != 1 {
		t.Errorf("期望Total Absent=1，实际=%v", totalAbsent)
	}
	if percentage != "75.0%" {
		t.Errorf("期望Attendance %%=75.0%%，实际=%v", percentage)
	}
}

func TestBuildReportMatrix_ZeroMarkedDays(t *testing.T) {
	// 记录缺 Student 关联时跳过，矩阵只剩表头
	records := []model.AttendanceRecord{
		{ID: "att-1", StudentID: "stu-x", Date: "2026-03-01", IsPresent: true},
	}

	matrix := buildReportMatrix(records)
	if len(matrix) != 1 {
		t.Fatalf("期望仅表头，实际=%d行", len(matrix))
	}
}

func TestBuildReportMatrix_Empty(t *testing.T) {
	matrix := buildReportMatrix(nil)
	if len(matrix) != 1 {
		t.Fatalf("期望仅表头，实际=%d行", len(matrix))
	}
	// 无日期列：5基础列 + 3合计列
	if len(matrix[0]) != 8 {
		t.Errorf("期望8列，实际=%d列", len(matrix[0]))
	}
}

// ── ExportReport 测试 ──

func TestExportService_ExportReport_Success(t *testing.T) {
	svc, students, attendance := setupTestExportService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	if _, err := attendance.Mark(context.Background(), markReq(alice.ID, "2026-03-02", true)); err != nil {
		t.Fatalf("Mark失败: %v", err)
	}

	buf, filename, err := svc.ExportReport(context.Background(), &dto.ExportReportRequest{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-03",
	})
	if err != nil {
		t.Fatalf("ExportReport 应成功: %v", err)
	}
	if filename == "" {
		t.Error("期望返回文件名")
	}

	// xlsx 本质是 zip，前两个字节为 PK
	content := buf.Bytes()
	if len(content) < 2 || content[0] != 'P' || content[1] != 'K' {
		t.Fatal("导出内容不是有效的xlsx文件")
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("导出文件无法被excelize解析: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheetName)
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望表头+1行，实际=%d行", len(rows))
	}
	if rows[0][0] != "Name" || rows[1][0] != "Alice" {
		t.Errorf("期望首列为Name/Alice，实际=%s/%s", rows[0][0], rows[1][0])
	}
}

func TestExportService_ExportReport_SectionFilter(t *testing.T) {
	svc, students, attendance := setupTestExportService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	reqB := validCreateReq("Bob", "24SJCCC002")
	reqB.Section = "BBA B"
	bob, err := students.Create(context.Background(), reqB)
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	for _, r := range []*dto.MarkAttendanceRequest{
		markReq(alice.ID, "2026-03-02", true),
		markReq(bob.ID, "2026-03-02", true),
	} {
		if _, err := attendance.Mark(context.Background(), r); err != nil {
			t.Fatalf("Mark失败: %v", err)
		}
	}

	buf, _, err := svc.ExportReport(context.Background(), &dto.ExportReportRequest{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-03",
		Section:   "BBA B",
	})
	if err != nil {
		t.Fatalf("ExportReport 应成功: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("解析导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheetName)
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "Bob" {
		t.Errorf("期望仅Bob一行，实际=%d行", len(rows))
	}
}

func TestExportService_ExportReport_EmptyRange(t *testing.T) {
	svc, _, _ := setupTestExportService()

	buf, _, err := svc.ExportReport(context.Background(), &dto.ExportReportRequest{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-03",
	})
	if err != nil {
		t.Fatalf("无记录时导出应成功（仅表头）: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("解析导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheetName)
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("期望仅表头，实际=%d行", len(rows))
	}
}

func TestExportService_ExportReport_BadRange(t *testing.T) {
	svc, _, _ := setupTestExportService()

	_, _, err := svc.ExportReport(context.Background(), &dto.ExportReportRequest{
		StartDate: "2026-03-05",
		EndDate:   "2026-03-01",
	})
	if !errors.Is(err, ErrAttendanceBadRange) {
		t.Errorf("期望ErrAttendanceBadRange，实际=%v", err)
	}

	_, _, err = svc.ExportReport(context.Background(), &dto.ExportReportRequest{
		StartDate: "03/01/2026",
		EndDate:   "2026-03-05",
	})
	if !errors.Is(err, ErrAttendanceBadDate) {
		t.Errorf("期望ErrAttendanceBadDate，实际=%v", err)
	}
}

func TestExportService_ExportReport_ManyDates(t *testing.T) {
	svc, students, attendance := setupTestExportService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	// 跨多个日期列，验证宽表仍可正常渲染
	for day := 1; day <= 9; day++ {
		date := fmt.Sprintf("2026-03-%02d", day)
		if _, err := attendance.Mark(context.Background(), markReq(alice.ID, date, day%2 == 1)); err != nil {
			t.Fatalf("Mark失败: %v", err)
		}
	}

	buf, _, err := svc.ExportReport(context.Background(), &dto.ExportReportRequest{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-31",
	})
	if err != nil {
		t.Fatalf("ExportReport 应成功: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("解析导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheetName)
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	// 5基础列 + 9日期列 + 3合计列
	if len(rows[0]) != 17 {
		t.Errorf("期望17列，实际=%d列", len(rows[0]))
	}
}
