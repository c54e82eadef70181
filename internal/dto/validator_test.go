package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidators(v); err != nil {
		t.Fatalf("注册校验器失败: %v", err)
	}
	return v
}

func TestAttendanceStatusTag(t *testing.T) {
	v := newValidator(t)

	for _, s := range []string{"Present", "Absent", "Late", "Excused"} {
		m := AttendanceMark{StudentID: 1, Period: 1, Status: s}
		if err := v.Struct(m); err != nil {
			t.Errorf("%q 应通过校验: %v", s, err)
		}
	}
	for _, s := range []string{"present", "Sick", " Late"} {
		m := AttendanceMark{StudentID: 1, Period: 1, Status: s}
		if err := v.Struct(m); err == nil {
			t.Errorf("%q 应校验失败", s)
		}
	}
}

func TestSemesterLabelTag(t *testing.T) {
	v := newValidator(t)

	ok := CalendarQuery{Label: "Χειμερινό Εξάμηνο 2025"}
	if err := v.Struct(ok); err != nil {
		t.Errorf("希腊文名称应通过校验: %v", err)
	}

	long := make([]rune, semesterLabelMaxLen+1)
	for i := range long {
		long[i] = 'α'
	}
	for _, label := range []string{"   ", "\xff\xfe", string(long)} {
		if err := v.Struct(CalendarQuery{Label: label}); err == nil {
			t.Errorf("%q 应校验失败", label)
		}
	}
}

func TestRecordAttendanceRequest_Dive(t *testing.T) {
	v := newValidator(t)

	req := RecordAttendanceRequest{
		Date: "2025-10-06",
		Marks: []AttendanceMark{
			{StudentID: 1, Period: 1, Status: "Present"},
			{StudentID: 2, Period: 13, Status: "Absent"},
		},
	}
	if err := v.Struct(req); err == nil {
		t.Error("节次超出范围应校验失败")
	}

	req.Marks[1].Period = 2
	if err := v.Struct(req); err != nil {
		t.Errorf("合法请求应通过校验: %v", err)
	}

	req.Date = "06/10/2025"
	if err := v.Struct(req); err == nil {
		t.Error("日期格式错误应校验失败")
	}
}

func TestPaginationDefaults(t *testing.T) {
	p := PaginationRequest{}
	if p.GetPage() != 1 || p.GetPageSize() != 20 || p.GetOffset() != 0 {
		t.Errorf("默认分页错误: %d/%d/%d", p.GetPage(), p.GetPageSize(), p.GetOffset())
	}
	p = PaginationRequest{Page: 3, PageSize: 10}
	if p.GetOffset() != 20 {
		t.Errorf("期望 offset=20，实际 %d", p.GetOffset())
	}
}
