package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgErrors "pitapat/pkg/errors"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Detail  string `json:"detail,omitempty"` // 详细错误信息（可选）
}

// ErrorResponse 错误响应结构 {"error": {"message", "status"}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MessageResponse 无数据的成功响应
type MessageResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Success 成功响应, 直接返回数据
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// OK 成功响应
func OK(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "success", Status: http.StatusOK})
}

// Error 错误响应, 按错误分类选择 HTTP 状态码
func Error(c *gin.Context, err error) {
	if appErr, ok := pkgErrors.As(err); ok {
		c.JSON(appErr.Kind.HTTPStatus(), ErrorResponse{Error: ErrorBody{
			Message: appErr.Message,
			Status:  appErr.Code,
		}})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
	}})
}

// ErrorWithCode 自定义错误响应
func ErrorWithCode(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorResponse{Error: ErrorBody{
		Message: message,
		Status:  httpStatus,
	}})
}

// ErrorWithDetail 带详细信息的错误响应
func ErrorWithDetail(c *gin.Context, httpStatus int, message, detail string) {
	c.JSON(httpStatus, ErrorResponse{Error: ErrorBody{
		Message: message,
		Status:  httpStatus,
		Detail:  detail,
	}})
}
