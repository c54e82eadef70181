package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/repository"
)

func setupTestExportService(t *testing.T) (ExportService, *attendanceFixture) {
	t.Helper()
	f := setupTestAttendanceService(t, false)
	repo := &repository.Repository{
		Course:     f.courses,
		Enrollment: f.enrollment,
		Attendance: f.records,
	}
	return NewExportService(repo, f.svc, zap.NewNop()), f
}

func TestExportService_ExportAttendance(t *testing.T) {
	svc, f := setupTestExportService(t)
	record(t, f.svc, mark(1, 1, "Present"), mark(1, 2, "Late"), mark(2, 1, "Absent"))

	buf, filename, err := svc.ExportAttendance(context.Background(), "c1", testDate)
	if err != nil {
		t.Fatalf("ExportAttendance 应成功: %v", err)
	}
	if filename != "attendance_cs-101_2024-10-15.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}
	// xlsx 为 zip 格式
	if b := buf.Bytes(); len(b) < 2 || b[0] != 'P' || b[1] != 'K' {
		t.Fatal("输出不是合法的 xlsx 文件")
	}

	xf, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法读取生成的 Excel: %v", err)
	}
	defer xf.Close()

	if v, _ := xf.GetCellValue(sheetSummary, "B3"); v != "1" {
		t.Errorf("Present 计数错误: %q", v)
	}
	if v, _ := xf.GetCellValue(sheetSummary, "B9"); v != "3" {
		t.Errorf("Pending slots 错误: %q", v)
	}

	cases := map[string]string{
		"A1": "Student",
		"B1": "P1",
		"D1": "P3",
		"E1": "Overall",
		"A2": "1",
		"B2": "Present",
		"C2": "Late",
		"D2": "-",
		"E2": "Mixed",
		"B3": "Absent",
		"E3": "Absent",
	}
	for axis, want := range cases {
		if v, _ := xf.GetCellValue(sheetGrid, axis); v != want {
			t.Errorf("%s!%s 期望 %q，实际 %q", sheetGrid, axis, want, v)
		}
	}
}

func TestExportService_NoStudents(t *testing.T) {
	svc, f := setupTestExportService(t)
	f.enrollment.students["c1"] = nil

	_, _, err := svc.ExportAttendance(context.Background(), "c1", testDate)
	if !errors.Is(err, ErrExportNoStudents) {
		t.Errorf("期望 ErrExportNoStudents，实际: %v", err)
	}
}

func TestExportService_CourseNotFound(t *testing.T) {
	svc, _ := setupTestExportService(t)

	_, _, err := svc.ExportAttendance(context.Background(), "missing", testDate)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestExportService_InvalidDate(t *testing.T) {
	svc, _ := setupTestExportService(t)

	_, _, err := svc.ExportAttendance(context.Background(), "c1", "not-a-date")
	if !errors.Is(err, ErrAttendanceInvalidDate) {
		t.Errorf("期望 ErrAttendanceInvalidDate，实际: %v", err)
	}
}
