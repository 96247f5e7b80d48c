package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// 存储层错误分类，调用方通过 errors.Is / errors.As 判断
var (
	// ErrNoteNotFound 按 ID 精确查找未命中
	ErrNoteNotFound = errors.New("note not found")
	// ErrAmbiguousID ID 前缀匹配到多条笔记
	ErrAmbiguousID = errors.New("note id prefix is ambiguous")
	// ErrCorruptRecord 持久化的标签无法解码
	ErrCorruptRecord = errors.New("corrupt note record")
	// ErrSchemaTooNew 存储的 schema 版本高于当前程序支持的版本
	ErrSchemaTooNew = errors.New("store schema version is newer than supported")
	// ErrInvalidNote 笔记参数非法
	ErrInvalidNote = errors.New("invalid note")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
)

// StorageError 未归类的底层存储错误，记录失败的操作
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError 包装底层错误，err 为 nil 时返回 nil
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError 判断是否为底层存储错误
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
