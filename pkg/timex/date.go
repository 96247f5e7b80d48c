package timex

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidDate 无法识别的日期表达式
var ErrInvalidDate = errors.New("invalid date")

// DateRange 闭区间日期范围，nil 表示该端不限
type DateRange struct {
	From *string
	To   *string
}

func day(t time.Time, offset int) *string {
	s := t.AddDate(0, 0, offset).Format(DateLayout)
	return &s
}

// ParseDate 校验 YYYY-MM-DD 格式
// ParseDate checks a literal YYYY-MM-DD date.
func ParseDate(s string) (string, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", errors.Wrapf(ErrInvalidDate, "%q", s)
	}
	return s, nil
}

// ParseDateTarget 将搜索用的日期表达式转换为闭区间范围
// 支持 all, past, future, today, yesterday, tomorrow, last week, last month, next week, next month 与 YYYY-MM-DD
// ParseDateTarget converts a search date expression into an inclusive range relative to now.
func ParseDateTarget(s string, now time.Time) (DateRange, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", " ")
	switch key {
	case "", "all":
		return DateRange{}, nil
	case "past":
		return DateRange{To: day(now, -1)}, nil
	case "future":
		return DateRange{From: day(now, 1)}, nil
	case "today":
		return DateRange{From: day(now, 0), To: day(now, 0)}, nil
	case "yesterday":
		return DateRange{From: day(now, -1), To: day(now, -1)}, nil
	case "tomorrow":
		return DateRange{From: day(now, 1), To: day(now, 1)}, nil
	case "last week":
		return DateRange{From: day(now, -7), To: day(now, -1)}, nil
	case "last month":
		return DateRange{From: day(now, -30), To: day(now, -1)}, nil
	case "next week":
		return DateRange{From: day(now, 1), To: day(now, 7)}, nil
	case "next month":
		return DateRange{From: day(now, 1), To: day(now, 30)}, nil
	}

	d, err := ParseDate(strings.TrimSpace(s))
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{From: &d, To: &d}, nil
}

// ParseDateSource 将新建笔记的日期表达式转换为 subject_date，none 返回 nil
// ParseDateSource converts a note date expression into a subject date; "none" yields nil.
func ParseDateSource(s string, now time.Time) (*string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return day(now, 0), nil
	case "yesterday":
		return day(now, -1), nil
	case "tomorrow":
		return day(now, 1), nil
	case "none":
		return nil, nil
	}
	d, err := ParseDate(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &d, nil
}
