package fileurl

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 所在目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// IsAbsPath determines if it is an absolute path
// IsAbsPath 判断是否为绝对路径
func IsAbsPath(path string) bool {
	if runtime.GOOS == "windows" && filepath.VolumeName(path) != "" {
		return true
	}
	return filepath.IsAbs(path)
}

// ResolvePath resolves a relative path against root, or the working directory when root is empty
// ResolvePath 将相对路径解析为绝对路径，root 为空时以工作目录为基准
func ResolvePath(path string, root string) string {
	if path == "" || IsAbsPath(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if root == "" {
		root, _ = os.Getwd()
	}
	return filepath.Join(root, path)
}
