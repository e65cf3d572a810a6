package service

import (
	"errors"
	"fmt"
)

// 服务层错误，由 api 层统一映射为 HTTP 状态码
var (
	ErrValidation   = errors.New("invalid input")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
)

// LimitExceededError 表示超出计划限额
type LimitExceededError struct {
	Resource     string
	CurrentCount int64
	Limit        int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit reached (%d/%d)", e.Resource, e.CurrentCount, e.Limit)
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
