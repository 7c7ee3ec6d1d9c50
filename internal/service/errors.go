package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIDGenerationExhausted 表示随机主键在限定次数内始终碰撞，属于服务端故障。
	ErrIDGenerationExhausted = errors.New("failed to generate unique id after multiple attempts")

	// ErrForbidden 表示操作者既不是作者也不是管理员。
	ErrForbidden = errors.New("not allowed to modify this recipe")
)

// ValidationError 表示请求内容不合法（空名称、非法取值等），不应重试。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError 指向一批不存在的引用，一次性列出全部缺失的标识。
type NotFoundError struct {
	Resource string
	IDs      []string
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, strings.Join(e.IDs, ", "))
}

// ConflictError 表示唯一性约束在非忽略路径上被触发。
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func notFoundRecipe(id string) *NotFoundError {
	return &NotFoundError{Resource: "recipe", IDs: []string{id}}
}
