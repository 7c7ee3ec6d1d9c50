package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cookbook/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondServiceError 把服务层的类型化错误映射为 HTTP 状态码。
// 事务内部的包装（%w）在这里被穿透，保留原始错误类别。
func respondServiceError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var notFound *service.NotFoundError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		respondError(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		respondError(c, http.StatusConflict, conflict.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "无权操作该菜谱")
	case errors.Is(err, service.ErrIDGenerationExhausted):
		respondError(c, http.StatusInternalServerError, "生成唯一标识失败")
	default:
		respondError(c, http.StatusInternalServerError, "服务器内部错误")
	}
}

// parseIDList 解析逗号分隔或重复出现的数字 ID 查询参数，去重保序。
func parseIDList(values []string) []uint {
	ids := make([]uint, 0, len(values))
	seen := make(map[uint]struct{})
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			parsed, err := strconv.ParseUint(trimmed, 10, 32)
			if err != nil {
				continue
			}
			id := uint(parsed)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
