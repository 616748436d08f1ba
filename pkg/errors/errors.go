package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类, 决定返回给调用方的 HTTP 状态码
type Kind int8

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindAdapterFailure
	KindPersistenceFailure
)

var kindName = map[Kind]string{
	KindInternal:           "Internal",
	KindBadRequest:         "BadRequest",
	KindUnauthorized:       "Unauthorized",
	KindForbidden:          "Forbidden",
	KindNotFound:           "NotFound",
	KindConflict:           "Conflict",
	KindAdapterFailure:     "AdapterFailure",
	KindPersistenceFailure: "PersistenceFailure",
}

func (k Kind) String() string {
	if name, ok := kindName[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// HTTPStatus 错误分类 → HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// 业务错误码, 写入响应体的 status 字段
const (
	CodeSubdomainExists = 4000
	CodeResourceExists  = 4001
	CodeInvalidState    = 4002
)

// AppError 应用错误
type AppError struct {
	Kind    Kind   `json:"-"`
	Code    int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s/%d] %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s/%d] %s", e.Kind, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同一分类同一错误码视为同一错误, 便于对 Wrap 过的哨兵错误做 errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Message == t.Message
}

// New 创建新错误, code 为 0 时使用 HTTP 状态码
func New(kind Kind, code int, message string) *AppError {
	if code == 0 {
		code = kind.HTTPStatus()
	}
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    kind.HTTPStatus(),
		Message: message,
		Err:     err,
	}
}

// WithCause 复制哨兵错误并附带底层原因
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// KindOf 取错误分类, 非 AppError 一律视为 Internal
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As 取出 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// 预定义错误
var (
	ErrBadRequest      = New(KindBadRequest, 0, "请求参数错误")
	ErrUnauthorized    = New(KindUnauthorized, 0, "未授权")
	ErrForbidden       = New(KindForbidden, 0, "禁止访问")
	ErrInternalError   = New(KindInternal, 0, "内部服务器错误")
	ErrDatabaseError   = New(KindPersistenceFailure, 0, "数据库错误")
	ErrRecordNotFound  = New(KindNotFound, 0, "记录不存在")
	ErrMissingToken    = New(KindUnauthorized, 0, "缺少Authorization Header")
	ErrInvalidToken    = New(KindUnauthorized, 0, "无效的Token")
	ErrNotProjectOwner = New(KindForbidden, 0, "无权操作该项目")

	ErrProjectNotFound = New(KindNotFound, 0, "项目不存在")
	ErrBuildNotFound   = New(KindNotFound, 0, "构建不存在")
	ErrBuildExists     = New(KindConflict, CodeResourceExists, "该提交的构建已存在")
	ErrDeployExists    = New(KindConflict, CodeResourceExists, "该构建已是当前部署")
	ErrSubdomainExists = New(KindConflict, CodeSubdomainExists, "子域名已存在")
	ErrInvalidState    = New(KindConflict, CodeInvalidState, "当前状态不允许该操作")
	ErrStatusConflict  = New(KindConflict, CodeInvalidState, "状态已被并发修改")

	ErrSourceHost  = New(KindUnauthorized, 0, "获取代码仓库提交信息失败")
	ErrTrigger     = New(KindAdapterFailure, 0, "触发构建失败")
	ErrDeploy      = New(KindAdapterFailure, 0, "触发部署失败")
	ErrRollout     = New(KindAdapterFailure, 0, "查询发布状态失败")
	ErrProvision   = New(KindAdapterFailure, 0, "创建项目发布失败")
	ErrDeprovision = New(KindAdapterFailure, 0, "删除项目发布失败")
	ErrDNS         = New(KindAdapterFailure, 0, "DNS 记录操作失败")
)
