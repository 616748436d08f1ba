package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError 请求绑定错误 → 可读信息
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatFieldError(e))
		}
		return strings.Join(messages, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("字段 %s 类型应为 %s", typeErr.Field, typeErr.Type.String())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "JSON 格式错误"
	}

	return err.Error()
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("字段 %s 必填", field)
	case "max":
		return fmt.Sprintf("字段 %s 不能大于 %s", field, e.Param())
	case "min":
		return fmt.Sprintf("字段 %s 不能小于 %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("字段 %s 只能是: %s", field, e.Param())
	default:
		return fmt.Sprintf("字段 %s 校验失败: %s", field, e.Tag())
	}
}
