package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrors 将 gin 绑定校验错误展开为逐字段错误描述，
// 供统一响应的 errors 列表使用
func bindingErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: 必填字段缺失", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s: 邮箱格式不正确", field))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("%s: 必须为 UUID", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s: 必须为合法 URL", field))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s: 长度超出允许范围", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: 校验失败(%s)", field, fe.Tag()))
		}
	}
	return msgs
}
