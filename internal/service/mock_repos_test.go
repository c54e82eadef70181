package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/model"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/repository"
	pkgerrors "github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/errors"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/redis"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses   map[string]*model.Course
	seq       int
	setActive int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	for _, c := range m.courses {
		if course.Code != "" && c.Code == course.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if course.CourseID == "" {
		m.seq++
		course.CourseID = fmt.Sprintf("course-%03d", m.seq)
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter) ([]model.Course, int64, error) {
	all, _ := m.ListAll(context.Background())
	var result []model.Course
	for _, c := range all {
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(c.Name, filter.Keyword) && !strings.Contains(c.Code, filter.Keyword) {
			continue
		}
		result = append(result, c)
	}
	total := int64(len(result))
	if filter.Offset < len(result) {
		result = result[filter.Offset:]
	} else {
		result = nil
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, total, nil
}

func (m *mockCourseRepo) ListAll(_ context.Context) ([]model.Course, error) {
	result := make([]model.Course, 0, len(m.courses))
	for _, c := range m.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	stored, ok := m.courses[course.CourseID]
	if !ok || stored.Version != course.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *course
	cp.Version++
	m.courses[course.CourseID] = &cp
	course.Version = cp.Version
	return nil
}

func (m *mockCourseRepo) SetActive(_ context.Context, id string, active bool) error {
	c, ok := m.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.IsActive = active
	c.Version++
	m.setActive++
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	students map[string][]int
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{students: make(map[string][]int)}
}

func (m *mockEnrollmentRepo) ListStudentIDs(_ context.Context, courseID string) ([]int, error) {
	ids := append([]int(nil), m.students[courseID]...)
	sort.Ints(ids)
	return ids, nil
}

func (m *mockEnrollmentRepo) Replace(_ context.Context, courseID string, studentIDs []int) error {
	m.students[courseID] = append([]int(nil), studentIDs...)
	return nil
}

// ── Mock AttendanceRepository ──

type attendanceKey struct {
	courseID  string
	date      string
	studentID int
	period    int
}

type mockAttendanceRepo struct {
	mu         sync.Mutex
	records    map[attendanceKey]model.AttendanceRecord
	upserts    int
	failUpsert error
	// afterList 在 ListByCourseDate 取完数据、返回之前调用
	afterList func()
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[attendanceKey]model.AttendanceRecord)}
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, records []model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert != nil {
		return m.failUpsert
	}
	m.upserts++
	for _, r := range records {
		k := attendanceKey{
			courseID:  r.CourseID,
			date:      time.Time(r.Date).Format(pkgerrors.DateLayout),
			studentID: r.StudentID,
			period:    r.Period,
		}
		m.records[k] = r
	}
	return nil
}

func (m *mockAttendanceRepo) ListByCourseDate(_ context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	day := date.Format(pkgerrors.DateLayout)
	var result []model.AttendanceRecord
	for k, r := range m.records {
		if k.courseID == courseID && k.date == day {
			result = append(result, r)
		}
	}
	hook := m.afterList
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return result, nil
}

// put 直接写入一条已落库记录
func (m *mockAttendanceRepo) put(courseID, date string, studentID, period int, status string) {
	day, _ := pkgerrors.ParseDate(date, time.UTC)
	_ = m.Upsert(context.Background(), []model.AttendanceRecord{{
		CourseID:  courseID,
		StudentID: studentID,
		Date:      datatypes.Date(day),
		Period:    period,
		Status:    status,
	}})
}

// ── Mock SnapshotCache ──

type mockCache struct {
	mu      sync.Mutex
	data    map[string]string
	gets    int
	hits    int
	deletes []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	raw, ok := m.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	m.hits++
	return json.Unmarshal([]byte(raw), dst)
}

func (m *mockCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = string(raw)
	return nil
}

func (m *mockCache) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, prefix)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

var errMockDB = errors.New("mock db failure")
