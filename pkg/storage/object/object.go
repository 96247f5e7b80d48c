// Package object 存储后端共用的对象描述
package object

import (
	"path"
	"strings"
	"time"
)

// Info 存储中的一个对象，Key 相对于后端的 CustomPath
type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Join 以 / 拼接路径前缀与对象键
func Join(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// Rel 去掉前缀，返回相对于 prefix 的对象键
func Rel(prefix, full string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return strings.TrimLeft(full, "/")
	}
	return strings.TrimPrefix(strings.TrimLeft(full, "/"), prefix+"/")
}
