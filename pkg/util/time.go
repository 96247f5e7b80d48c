package util

import (
	"strings"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/convert"
)

// dayUnits suffixes accepted on top of time.ParseDuration
// dayUnits 在 time.ParseDuration 之外额外支持的后缀
var dayUnits = map[byte]time.Duration{
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseDuration parses config durations: Go syntax, a bare number of seconds, or whole days/weeks such as 30d or 2w
// ParseDuration 解析配置中的时长：Go 语法、纯数字秒，或 30d、2w 这样的整天整周
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if unit, ok := dayUnits[s[len(s)-1]]; ok {
		n, err := convert.StrTo(s[:len(s)-1]).Int()
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * unit, nil
	}
	if n, err := convert.StrTo(s).Int(); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
