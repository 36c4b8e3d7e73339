package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"club-attendance/backend/internal/dto"
	"club-attendance/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestAttendanceService() (AttendanceService, StudentService, *mockAttendanceRepo) {
	studentRepo := newMockStudentRepo()
	attendanceRepo := newMockAttendanceRepo(studentRepo)
	repo := &repository.Repository{
		Student:    studentRepo,
		Attendance: attendanceRepo,
	}
	logger := zap.NewNop()
	return NewAttendanceService(repo, logger),
		NewStudentService(newTestConfig(), repo, logger),
		attendanceRepo
}

func boolPtr(b bool) *bool { return &b }

func markReq(studentID, date string, present bool) *dto.MarkAttendanceRequest {
	return &dto.MarkAttendanceRequest{
		StudentID: studentID,
		Date:      date,
		IsPresent: boolPtr(present),
	}
}

// ── Mark 测试 ──

func TestAttendanceService_Mark_Success(t *testing.T) {
	svc, students, _ := setupTestAttendanceService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	result, err := svc.Mark(context.Background(), markReq(alice.ID, "2026-03-02", true))
	if err != nil {
		t.Fatalf("Mark 应成功: %v", err)
	}
	if !result.IsPresent {
		t.Error("期望IsPresent=true")
	}
	if result.Date != "2026-03-02" {
		t.Errorf("期望Date=2026-03-02，实际=%s", result.Date)
	}
	if result.ID == "" {
		t.Error("期望生成记录ID")
	}
}

func TestAttendanceService_Mark_UpsertOverwrites(t *testing.T) {
	svc, students, attendanceRepo := setupTestAttendanceService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	first, err := svc.Mark(context.Background(), markReq(alice.ID, "2026-03-02", true))
	if err != nil {
		t.Fatalf("首次Mark应成功: %v", err)
	}

	second, err := svc.Mark(context.Background(), markReq(alice.ID, "2026-03-02", false))
	if err != nil {
		t.Fatalf("重复Mark应成功: %v", err)
	}

	// 同一 (student_id, date) 覆盖而非新增
	if len(attendanceRepo.records) != 1 {
		t.Fatalf("期望仅1条记录，实际=%d", len(attendanceRepo.records))
	}
	if second.ID != first.ID {
		t.Errorf("覆盖应保留原记录ID，期望=%s，实际=%s", first.ID, second.ID)
	}
	if second.IsPresent {
		t.Error("期望覆盖后IsPresent=false")
	}
}

func TestAttendanceService_Mark_StudentNotFound(t *testing.T) {
	svc, _, _ := setupTestAttendanceService()

	_, err := svc.Mark(context.Background(), markReq("missing-id", "2026-03-02", true))
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望ErrStudentNotFound，实际=%v", err)
	}
}

func TestAttendanceService_Mark_BadDate(t *testing.T) {
	svc, students, _ := setupTestAttendanceService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	for _, bad := range []string{"2026/03/02", "02-03-2026", "2026-3-2", "tomorrow", ""} {
		if _, err := svc.Mark(context.Background(), markReq(alice.ID, bad, true)); !errors.Is(err, ErrAttendanceBadDate) {
			t.Errorf("日期 %q 期望ErrAttendanceBadDate，实际=%v", bad, err)
		}
	}
}

// ── BulkMark 测试 ──

func TestAttendanceService_BulkMark_PartialSuccess(t *testing.T) {
	svc, students, _ := setupTestAttendanceService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	bob, err := students.Create(context.Background(), validCreateReq("Bob", "24SJCCC002"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	req := &dto.BulkMarkAttendanceRequest{
		AttendanceRecords: []dto.MarkAttendanceRequest{
			*markReq(alice.ID, "2026-03-02", true),
			*markReq("missing-id", "2026-03-02", true), // 学生不存在
			*markReq(bob.ID, "2026-03-02", false),
		},
	}

	resp, err := svc.BulkMark(context.Background(), req)
	if err != nil {
		t.Fatalf("BulkMark 应成功: %v", err)
	}
	if resp.Total != 3 || resp.Success != 2 || resp.Failed != 1 {
		t.Errorf("期望Total=3/Success=2/Failed=1，实际=%d/%d/%d", resp.Total, resp.Success, resp.Failed)
	}
	if len(resp.Errors) != 1 || !strings.Contains(resp.Errors[0], "第 2 条") {
		t.Errorf("错误应指明第2条，实际=%v", resp.Errors)
	}
}

func TestAttendanceService_BulkMark_DuplicateKeysLastWins(t *testing.T) {
	svc, students, attendanceRepo := setupTestAttendanceService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	// 同一批内出现同键两次：按序执行，后者覆盖前者
	req := &dto.BulkMarkAttendanceRequest{
		AttendanceRecords: []dto.MarkAttendanceRequest{
			*markReq(alice.ID, "2026-03-02", true),
			*markReq(alice.ID, "2026-03-02", false),
		},
	}

	resp, err := svc.BulkMark(context.Background(), req)
	if err != nil {
		t.Fatalf("BulkMark 应成功: %v", err)
	}
	if resp.Success != 2 {
		t.Errorf("期望Success=2，实际=%d", resp.Success)
	}
	if len(attendanceRepo.records) != 1 {
		t.Fatalf("期望仅1条记录，实际=%d", len(attendanceRepo.records))
	}
	for _, rec := range attendanceRepo.records {
		if rec.IsPresent {
			t.Error("期望最终IsPresent=false（后写覆盖）")
		}
	}
}

// ── ListByDate / ListByRange 测试 ──

func TestAttendanceService_ListByDate(t *testing.T) {
	svc, students, _ := setupTestAttendanceService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	bob, err := students.Create(context.Background(), validCreateReq("Bob", "24SJCCC002"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	for _, r := range []*dto.MarkAttendanceRequest{
		markReq(bob.ID, "2026-03-02", false),
		markReq(alice.ID, "2026-03-02", true),
		markReq(alice.ID, "2026-03-03", true), // 不同日期，不应出现
	} {
		if _, err := svc.Mark(context.Background(), r); err != nil {
			t.Fatalf("Mark失败: %v", err)
		}
	}

	result, err := svc.ListByDate(context.Background(), "2026-03-02", "")
	if err != nil {
		t.Fatalf("ListByDate 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("期望2条记录，实际=%d", len(result))
	}
	// 按学生姓名排序，且携带学生信息
	if result[0].Student.Name != "Alice" || result[1].Student.Name != "Bob" {
		t.Errorf("期望按姓名排序，实际=%s,%s", result[0].Student.Name, result[1].Student.Name)
	}
}

func TestAttendanceService_ListByRange(t *testing.T) {
	svc, students, _ := setupTestAttendanceService()

	alice, err := students.Create(context.Background(), validCreateReq("Alice", "24SJCCC001"))
	if err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	for _, r := range []*dto.MarkAttendanceRequest{
		markReq(alice.ID, "2026-03-01", true),
		markReq(alice.ID, "2026-03-02", false),
		markReq(alice.ID, "2026-03-05", true), // 区间外
	} {
		if _, err := svc.Mark(context.Background(), r); err != nil {
			t.Fatalf("Mark失败: %v", err)
		}
	}

	result, err := svc.ListByRange(context.Background(), "2026-03-01", "2026-03-03")
	if err != nil {
		t.Fatalf("ListByRange 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("期望2条记录（闭区间），实际=%d", len(result))
	}
	// 日期倒序
	if result[0].Date != "2026-03-02" || result[1].Date != "2026-03-01" {
		t.Errorf("期望日期倒序，实际=%s,%s", result[0].Date, result[1].Date)
	}
}

func TestAttendanceService_ListByRange_StartAfterEnd(t *testing.T) {
	svc, _, _ := setupTestAttendanceService()

	_, err := svc.ListByRange(context.Background(), "2026-03-05", "2026-03-01")
	if !errors.Is(err, ErrAttendanceBadRange) {
		t.Errorf("期望ErrAttendanceBadRange，实际=%v", err)
	}
}
