package dto

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/analytics"
)

// semesterLabelMaxLen 与 courses.semester_label 列宽一致
const semesterLabelMaxLen = 100

// RegisterValidators 注册自定义 binding 标签
//
//	attendance_status: Present | Absent | Late | Excused（大小写敏感）
//	semester_label:    非空白、合法 UTF-8、不超过 100 字符
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("attendance_status", validateAttendanceStatus); err != nil {
		return err
	}
	return v.RegisterValidation("semester_label", validateSemesterLabel)
}

func validateAttendanceStatus(fl validator.FieldLevel) bool {
	_, ok := analytics.ParseStatus(fl.Field().String())
	return ok
}

func validateSemesterLabel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !utf8.ValidString(s) || strings.TrimSpace(s) == "" {
		return false
	}
	return utf8.RuneCountInString(s) <= semesterLabelMaxLen
}
