package handler

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neuroedge-api/internal/interfaces/http/dto"
	apperrors "neuroedge-api/pkg/errors"
)

// sessionHeader 访客会话标识头，缺失时由服务端生成
const sessionHeader = "X-Session-ID"

// resolveSessionID 解析访客会话标识并回写响应头
func resolveSessionID(c *gin.Context) string {
	sessionID := c.GetHeader(sessionHeader)
	if sessionID == "" || len(sessionID) > 128 {
		sessionID = uuid.NewString()
	}
	c.Header(sessionHeader, sessionID)
	return sessionID
}

// isNotFound 判断仓储层零行命中
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// respondError 将应用错误映射为统一错误响应
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
		ErrorCode: string(appErr.Code),
		Details:   appErr.Detail,
	})
}
