package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 当存在底层错误时返回 "消息: 底层错误"，否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "用户不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// HasCode 判断错误链上最外层的 CodeError 是否为指定错误码
func HasCode(err error, code int) bool {
	if err == nil {
		return false
	}
	return GetCode(err) == code
}

// 业务状态码常量定义
const (
	CodeSuccess      = 1000 // 成功
	CodeInvalidParam = 1001 // 请求参数错误
	CodeUserNotExist = 1003 // 用户不存在
	CodeServerBusy   = 1005 // 服务繁忙
	CodeUnauthorized = 1006 // 未授权/认证失败
	CodeNotFound     = 1008 // 资源不存在
	CodeDBError      = 1010 // 数据库错误
	CodeCacheError   = 1011 // 缓存错误

	// 握手认证失败
	CodeAuthMissing     = 1012 // 未携带凭证
	CodeAuthInvalid     = 1013 // 凭证签名/过期校验失败
	CodeUnknownIdentity = 1014 // 凭证有效但用户不存在或已删除
	CodeDuplicate       = 1015 // 唯一约束冲突（仅数据层内部使用）

	// 关系申请冲突
	CodeAlreadyMember  = 1020 // 已是团队成员
	CodeAlreadyInvited = 1021 // 已存在待处理的入队邀请
	CodeAlreadyFriends = 1022 // 已是好友
	CodeAlreadyPending = 1023 // 已存在待处理的好友申请
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy   = New(CodeServerBusy, "服务繁忙")

	ErrAuthMissing     = New(CodeAuthMissing, "未携带登录凭证")
	ErrAuthInvalid     = New(CodeAuthInvalid, "登录凭证无效或已过期")
	ErrUnknownIdentity = New(CodeUnknownIdentity, "登录凭证对应的用户不存在")

	ErrAlreadyMember  = New(CodeAlreadyMember, "User is already in the team")
	ErrAlreadyInvited = New(CodeAlreadyInvited, "User already invited to team")
	ErrAlreadyFriends = New(CodeAlreadyFriends, "Already friends with this user")
	ErrAlreadyPending = New(CodeAlreadyPending, "Friend request is already pending")
	ErrRequestMissing = New(CodeNotFound, "Request not found")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}

// IsAuthFailure 检查错误是否属于握手认证失败
func IsAuthFailure(err error) bool {
	switch GetCode(err) {
	case CodeAuthMissing, CodeAuthInvalid, CodeUnknownIdentity, CodeUnauthorized:
		return true
	}
	return false
}

// IsConflict 检查错误是否属于关系申请冲突
func IsConflict(err error) bool {
	switch GetCode(err) {
	case CodeAlreadyMember, CodeAlreadyInvited, CodeAlreadyFriends, CodeAlreadyPending:
		return true
	}
	return false
}
