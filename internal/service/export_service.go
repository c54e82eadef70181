package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/dto"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoStudents   = errors.New("该课程暂无选课学生")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const (
	sheetSummary = "Summary"
	sheetGrid    = "Attendance"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出某课程某日的考勤统计为 Excel (.xlsx)
//   - Sheet "Summary"：总体计数、覆盖率、待记录/无法识别槽位、逐节次计数
//   - Sheet "Attendance"：学生 × 节次网格，末列为学生聚合状态
//   - 以 bytes.Buffer 返回，由 Handler 层设置下载响应头
type ExportService interface {
	ExportAttendance(ctx context.Context, courseID, date string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo       *repository.Repository
	attendance AttendanceService
	logger     *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, attendance AttendanceService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, attendance: attendance, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance — 导出考勤统计为 Excel
// ═══════════════════════════════════════════════════════════
//
// 返回值：buf（Excel 内容）, filename（attendance_<课程代码>_<日期>.xlsx）, error

func (s *exportService) ExportAttendance(ctx context.Context, courseID, date string) (*bytes.Buffer, string, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, "", err
	}

	stats, err := s.attendance.GetAnalytics(ctx, courseID, &dto.AnalyticsQuery{Date: date})
	if err != nil {
		return nil, "", err
	}
	if len(stats.Students) == 0 {
		return nil, "", ErrExportNoStudents
	}

	list, err := s.attendance.ListMarks(ctx, courseID, date)
	if err != nil {
		return nil, "", err
	}
	grid := make(map[[2]int]string, len(list.Marks))
	for _, m := range list.Marks {
		grid[[2]int{m.StudentID, m.Period}] = m.Status
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		s.logger.Error("初始化 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if _, err := f.NewSheet(sheetGrid); err != nil {
		s.logger.Error("初始化 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writeSummarySheet(f, headerStyle, fmt.Sprintf("%s %s", course.Code, course.Name), stats)
	writeGridSheet(f, headerStyle, stats, grid)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", slug.Make(course.Code), date)
	return buf, filename, nil
}

// ── Sheet 生成 ──

func writeSummarySheet(f *excelize.File, headerStyle int, title string, stats *dto.AnalyticsResponse) {
	sh := sheetSummary
	f.SetColWidth(sh, "A", "A", 22)
	f.SetColWidth(sh, "B", "F", 12)

	f.SetCellValue(sh, "A1", title)
	f.SetCellValue(sh, "B1", stats.Date)
	f.SetCellStyle(sh, "A1", "B1", headerStyle)

	rows := []struct {
		label string
		value int
	}{
		{"Present", stats.Counts.Present},
		{"Absent", stats.Counts.Absent},
		{"Late", stats.Counts.Late},
		{"Excused", stats.Counts.Excused},
		{"Total slots", stats.TotalSlots},
		{"Recorded slots", stats.RecordedSlots},
		{"Pending slots", stats.PendingSlots},
		{"Unrecognized slots", stats.UnrecognizedSlots},
		{"Coverage %", stats.Coverage},
	}
	row := 3
	for _, r := range rows {
		f.SetCellValue(sh, cell("A", row), r.label)
		f.SetCellValue(sh, cell("B", row), r.value)
		row++
	}

	// 逐节次计数表
	row++
	headers := []string{"Period", "Present", "Absent", "Late", "Excused", "Recorded"}
	for i, h := range headers {
		f.SetCellValue(sh, cell(colName(i), row), h)
	}
	f.SetCellStyle(sh, cell("A", row), cell(colName(len(headers)-1), row), headerStyle)
	row++
	for _, pb := range stats.PerPeriod {
		c := pb.Counts
		values := []int{pb.Period, c.Present, c.Absent, c.Late, c.Excused, c.Present + c.Absent + c.Late + c.Excused}
		for i, v := range values {
			f.SetCellValue(sh, cell(colName(i), row), v)
		}
		row++
	}
}

func writeGridSheet(f *excelize.File, headerStyle int, stats *dto.AnalyticsResponse, grid map[[2]int]string) {
	sh := sheetGrid
	f.SetColWidth(sh, "A", "A", 12)

	f.SetCellValue(sh, "A1", "Student")
	for i, p := range stats.Periods {
		f.SetCellValue(sh, cell(colName(1+i), 1), fmt.Sprintf("P%d", p))
	}
	lastCol := colName(1 + len(stats.Periods))
	f.SetCellValue(sh, cell(lastCol, 1), "Overall")
	f.SetColWidth(sh, lastCol, lastCol, 12)
	f.SetCellStyle(sh, "A1", cell(lastCol, 1), headerStyle)

	for r, st := range stats.Students {
		row := r + 2
		f.SetCellValue(sh, cell("A", row), st.StudentID)
		for i, p := range stats.Periods {
			v, ok := grid[[2]int{st.StudentID, p}]
			if !ok {
				v = "-"
			}
			f.SetCellValue(sh, cell(colName(1+i), row), v)
		}
		overall := st.Status
		switch {
		case st.IsMixed:
			overall = "Mixed"
		case !st.HasAny:
			overall = "-"
		}
		f.SetCellValue(sh, cell(lastCol, row), overall)
	}
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
