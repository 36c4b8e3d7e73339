package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"club-attendance/backend/internal/model"
)

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student // 按主键 id 索引
	seq      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.ID == "" {
		m.seq++
		student.ID = fmt.Sprintf("stu-%03d", m.seq)
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now()
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByStudentID(_ context.Context, studentID string) (*model.Student, error) {
	for _, s := range m.students {
		if s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) ListActive(_ context.Context, section string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if !s.IsActive {
			continue
		}
		if section != "" && s.Section != section {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockStudentRepo) CountActive(_ context.Context) (int64, error) {
	var total int64
	for _, s := range m.students {
		if s.IsActive {
			total++
		}
	}
	return total, nil
}

func (m *mockStudentRepo) CountActiveSections(_ context.Context) (int64, error) {
	sections := make(map[string]struct{})
	for _, s := range m.students {
		if s.IsActive {
			sections[s.Section] = struct{}{}
		}
	}
	return int64(len(sections)), nil
}

// ── Mock AttendanceRepository ──

// mockAttendanceRepo 以 (student_id, date) 复合键存储，
// 模拟数据库唯一约束下的 ON CONFLICT 行为
type mockAttendanceRepo struct {
	records  map[string]*model.AttendanceRecord // key: studentID + "|" + date
	students *mockStudentRepo                   // 用于填充关联学生
	seq      int
}

func newMockAttendanceRepo(students *mockStudentRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{
		records:  make(map[string]*model.AttendanceRecord),
		students: students,
	}
}

func attendanceKey(studentID string, date model.DateOnly) string {
	return studentID + "|" + date.String()
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, record *model.AttendanceRecord) error {
	key := attendanceKey(record.StudentID, record.Date)
	if existing, ok := m.records[key]; ok {
		// 冲突时仅覆盖 is_present，保留原 id 与创建时间
		existing.IsPresent = record.IsPresent
		*record = *existing
		return nil
	}
	m.seq++
	record.ID = fmt.Sprintf("att-%03d", m.seq)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	stored := *record
	m.records[key] = &stored
	return nil
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, date model.DateOnly, section string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, rec := range m.records {
		if rec.Date != date {
			continue
		}
		item := *rec
		if s, ok := m.students.students[rec.StudentID]; ok {
			item.Student = s
		}
		if section != "" && (item.Student == nil || item.Student.Section != section) {
			continue
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		return studentName(&result[i]) < studentName(&result[j])
	})
	return result, nil
}

func (m *mockAttendanceRepo) ListByDateRange(_ context.Context, start, end model.DateOnly) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, rec := range m.records {
		if rec.Date < start || rec.Date > end {
			continue
		}
		item := *rec
		if s, ok := m.students.students[rec.StudentID]; ok {
			item.Student = s
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return studentName(&result[i]) < studentName(&result[j])
	})
	return result, nil
}

func (m *mockAttendanceRepo) CountByDate(_ context.Context, date model.DateOnly, isPresent bool) (int64, error) {
	var total int64
	for _, rec := range m.records {
		if rec.Date == date && rec.IsPresent == isPresent {
			total++
		}
	}
	return total, nil
}

func studentName(rec *model.AttendanceRecord) string {
	if rec.Student == nil {
		return ""
	}
	return rec.Student.Name
}
