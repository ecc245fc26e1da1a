package service

import "errors"

// ErrValidation matches every rejected input. The concrete *ValidationError
// carries the message shown to the user.
var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

var (
	ErrPhoneRegistered = invalid("该手机号已注册")
	ErrNotRegistered   = invalid("账号未注册")
	ErrAccountBanned   = invalid("账号已被封禁")

	ErrNoImages         = invalid("至少需要 1 张图片")
	ErrEmptyTitle       = invalid("商品标题不能为空")
	ErrShortDescription = invalid("商品描述至少 10 字")
	ErrNegativePrice    = invalid("商品价格不能为负数")
	ErrNegativeStock    = invalid("库存不能为负数")
	ErrInvalidCondition = invalid("无效的新旧程度")

	ErrInvalidQuantity   = invalid("数量至少为 1")
	ErrInsufficientStock = invalid("库存不足")

	ErrEmptyReason            = invalid("请填写投诉原因")
	ErrEvidenceCount          = invalid("证据图片数量 0~3 张")
	ErrInvalidComplaintType   = invalid("无效的投诉类型")
	ErrInvalidComplaintStatus = invalid("无效的投诉处理状态")
)
