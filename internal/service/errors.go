package service

import (
	"context"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/pkg/code"
	"github.com/haierkeys/jot-sync-service/pkg/timex"
	"github.com/haierkeys/jot-sync-service/pkg/writequeue"

	"github.com/pkg/errors"
)

// ErrorCode 将服务层错误映射为 API 错误码
func ErrorCode(err error) *code.Code {
	if err == nil {
		return nil
	}

	var c *code.Code
	if errors.As(err, &c) {
		return c
	}

	switch {
	case errors.Is(err, domain.ErrNoteNotFound):
		return code.ErrorNoteNotFound.WithDetails(err.Error())
	case errors.Is(err, domain.ErrAmbiguousID):
		return code.ErrorNoteAmbiguous.WithDetails(err.Error())
	case errors.Is(err, domain.ErrInvalidNote), errors.Is(err, timex.ErrInvalidDate):
		return code.ErrorNoteInvalid.WithDetails(err.Error())
	case errors.Is(err, domain.ErrCorruptRecord):
		return code.ErrorStoreCorrupt
	case errors.Is(err, domain.ErrSchemaTooNew):
		return code.ErrorStoreTooNew
	case errors.Is(err, domain.ErrUserNotFound):
		return code.ErrorUserNotFound
	case errors.Is(err, writequeue.ErrWriteQueueFull),
		errors.Is(err, writequeue.ErrWriteTimeout),
		errors.Is(err, writequeue.ErrWriteQueueClosed):
		return code.ErrorSyncBusy
	case errors.Is(err, context.DeadlineExceeded):
		return code.ErrorRequestTimeout
	}
	return code.ServerError
}
