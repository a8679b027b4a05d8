package errors

import (
	"fmt"

	"github.com/mowind/multiaddress-go/internal/jsonrpc"
)

// ErrorType 错误类型
type ErrorType string

const (
	// 系统级错误
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeConfig     ErrorType = "CONFIG_ERROR"
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"

	// 地址转换错误
	ErrorTypeInputType       ErrorType = "INPUT_TYPE_ERROR"
	ErrorTypeAddressLength   ErrorType = "ADDRESS_LENGTH_ERROR"
	ErrorTypeAddressCharset  ErrorType = "ADDRESS_CHARSET_ERROR"
	ErrorTypeAddressChecksum ErrorType = "ADDRESS_CHECKSUM_ERROR"

	// JSON-RPC 相关错误
	ErrorTypeJSONRPC        ErrorType = "JSONRPC_ERROR"
	ErrorTypeMethodNotFound ErrorType = "METHOD_NOT_FOUND"
	ErrorTypeInvalidParams  ErrorType = "INVALID_PARAMS"
)

// AppError 应用统一的错误类型
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        int                    `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	OriginalErr error                  `json:"-"`
}

// New 创建新的应用错误
func New(errorType ErrorType, code int, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap 包装现有错误
func Wrap(err error, errorType ErrorType, code int, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(errorType, code, message)
	appErr.OriginalErr = err
	appErr.Details = err.Error()
	return appErr
}

// Wrapf 包装现有错误并带格式
func Wrapf(err error, errorType ErrorType, code int, format string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, errorType, code, fmt.Sprintf(format, args...))
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s [%s:%d]: %s", e.Message, e.Type, e.Code, e.OriginalErr.Error())
	}
	return fmt.Sprintf("%s [%s:%d]", e.Message, e.Type, e.Code)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.OriginalErr
}

// Is 按错误类型比较
func (e *AppError) Is(target error) bool {
	if targetErr, ok := target.(*AppError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// ToJSONRPCError 转换为 JSON-RPC 错误
func (e *AppError) ToJSONRPCError() *jsonrpc.Error {
	var jsonrpcCode int
	switch e.Type {
	case ErrorTypeInvalidParams, ErrorTypeValidation,
		ErrorTypeInputType, ErrorTypeAddressLength, ErrorTypeAddressCharset, ErrorTypeAddressChecksum:
		jsonrpcCode = jsonrpc.CodeInvalidParams
	case ErrorTypeMethodNotFound:
		jsonrpcCode = jsonrpc.CodeMethodNotFound
	case ErrorTypeJSONRPC:
		jsonrpcCode = jsonrpc.CodeInvalidRequest
	default:
		jsonrpcCode = jsonrpc.CodeInternalError
	}

	errorData := map[string]interface{}{
		"type":    string(e.Type),
		"code":    e.Code,
		"details": e.Details,
	}
	for k, v := range e.Context {
		errorData[k] = v
	}

	return &jsonrpc.Error{
		Code:    jsonrpcCode,
		Message: e.Message,
		Data:    errorData,
	}
}

// 地址错误使用的应用错误码
const (
	CodeInputType       = 4001
	CodeAddressLength   = 4002
	CodeAddressCharset  = 4003
	CodeAddressChecksum = 4004
)

// Common errors 常用错误
var (
	ErrInternal   = New(ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal server error")
	ErrConfig     = New(ErrorTypeConfig, jsonrpc.CodeInternalError, "Configuration error")
	ErrValidation = New(ErrorTypeValidation, jsonrpc.CodeInvalidParams, "Validation failed")

	ErrInputType       = New(ErrorTypeInputType, CodeInputType, "Address must be a string")
	ErrAddressLength   = New(ErrorTypeAddressLength, CodeAddressLength, "Invalid address length")
	ErrAddressCharset  = New(ErrorTypeAddressCharset, CodeAddressCharset, "Invalid hex characters in address")
	ErrAddressChecksum = New(ErrorTypeAddressChecksum, CodeAddressChecksum, "Invalid address checksum")

	ErrMethodNotFound = New(ErrorTypeMethodNotFound, jsonrpc.CodeMethodNotFound, "Method not found")
	ErrInvalidParams  = New(ErrorTypeInvalidParams, jsonrpc.CodeInvalidParams, "Invalid parameters")
)
