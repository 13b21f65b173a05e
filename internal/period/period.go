// Package period 处理报告周期标识：ISO 周 "YYYY-Www" 与自然月 "YYYY-MM"
package period

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidPeriod 周期格式非法
var ErrInvalidPeriod = errors.New("invalid period")

var (
	weekPattern  = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)
	monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// FormatWeek 生成 "YYYY-Www"，周数补零两位
func FormatWeek(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// FormatYearMonth 生成 "YYYY-MM"
func FormatYearMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ISOWeek 返回 t 所在的 ISO 周
func ISOWeek(t time.Time) string {
	y, w := t.ISOWeek()
	return FormatWeek(y, w)
}

// CurrentMonth 返回 t 所在的自然月
func CurrentMonth(t time.Time) string {
	return FormatYearMonth(t.Year(), t.Month())
}

// IsWeek 是否为合法周标识
func IsWeek(s string) bool {
	_, _, err := ParseWeek(s)
	return err == nil
}

// IsMonth 是否为合法月标识
func IsMonth(s string) bool {
	_, _, err := ParseMonth(s)
	return err == nil
}

// ParseWeek 解析 "YYYY-Www"，并校验该年确实存在这一周
func ParseWeek(s string) (year, week int, err error) {
	m := weekPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	year, _ = strconv.Atoi(m[1])
	week, _ = strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("%w: week out of range %q", ErrInvalidPeriod, s)
	}
	if y, w := thursdayOf(year, week).ISOWeek(); y != year || w != week {
		return 0, 0, fmt.Errorf("%w: %d has no week %d", ErrInvalidPeriod, year, week)
	}
	return year, week, nil
}

// ParseMonth 解析 "YYYY-MM"
func ParseMonth(s string) (int, time.Month, error) {
	m := monthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month out of range %q", ErrInvalidPeriod, s)
	}
	return year, time.Month(month), nil
}

// WeekToMonth 返回 ISO 周的周四所在自然月
func WeekToMonth(s string) (string, error) {
	year, week, err := ParseWeek(s)
	if err != nil {
		return "", err
	}
	th := thursdayOf(year, week)
	return FormatYearMonth(th.Year(), th.Month()), nil
}

// MonthOf 周标识按周四规则归月，月标识原样返回，非法输入返回空串
func MonthOf(s string) string {
	if IsMonth(s) {
		return s
	}
	m, err := WeekToMonth(s)
	if err != nil {
		return ""
	}
	return m
}

// WeekStart 返回 ISO 周的周一（UTC）
func WeekStart(s string) (time.Time, error) {
	year, week, err := ParseWeek(s)
	if err != nil {
		return time.Time{}, err
	}
	return thursdayOf(year, week).AddDate(0, 0, -3), nil
}

// thursdayOf 1 月 4 日恒在第 1 周
func thursdayOf(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // 周一为 0
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7+3)
}
