// internal/service/intake/domain/errors.go
package domain

import "fmt"

// 错误分类：引擎根据类别决定回给用户什么消息、会话停在哪个状态。
//
//   - ValidationError: 本地可恢复，原样回显给用户并重发当前提示，不改变状态。
//   - PricingError:    计价失败，会话停在摘要之前的状态，用户可换数量或返回。
//   - CollaboratorError: 外部协作方失败（重试耗尽后），以通用失败消息上报，状态不变。
//   - 其余错误视为内部不变量被破坏，会话重置到初始状态。

// ValidationError 表示用户输入未通过校验。
// Message 可直接展示给用户。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError 构造一个用户可见的校验错误。
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// PricingError 包装计价引擎返回的失败。
type PricingError struct {
	Cause error
}

func (e *PricingError) Error() string { return "pricing unavailable: " + e.Cause.Error() }
func (e *PricingError) Unwrap() error { return e.Cause }

// CollaboratorError 包装外部协作方（Catalog、订单提交）在重试耗尽后的失败。
type CollaboratorError struct {
	Op    string
	Cause error
}

func (e *CollaboratorError) Error() string { return e.Op + ": " + e.Cause.Error() }
func (e *CollaboratorError) Unwrap() error { return e.Cause }
