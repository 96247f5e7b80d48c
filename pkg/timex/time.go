// Package timex 时间与日期辅助
package timex

import (
	"strings"
	"time"
)

// DateLayout subject_date 使用的日期格式
const DateLayout = "2006-01-02"

// TimeLayout JSON 输出使用的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// Time JSON 序列化为 TimeLayout 格式的时间
// Time marshals to JSON using TimeLayout.
type Time time.Time

// Now returns the current local time
// Now 返回当前时间
func Now() Time {
	return Time(time.Now())
}

func (t Time) Unix() int64      { return time.Time(t).Unix() }
func (t Time) UnixMilli() int64 { return time.Time(t).UnixMilli() }
func (t Time) UnixMicro() int64 { return time.Time(t).UnixMicro() }
func (t Time) UnixNano() int64  { return time.Time(t).UnixNano() }

func (t Time) String() string {
	return time.Time(t).Format(TimeLayout)
}

// MarshalJSON implements json.Marshaler
func (t Time) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte(`""`), nil
	}
	b := make([]byte, 0, len(TimeLayout)+2)
	b = append(b, '"')
	b = time.Time(t).AppendFormat(b, TimeLayout)
	return append(b, '"'), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}
