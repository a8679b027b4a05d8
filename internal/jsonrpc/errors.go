package jsonrpc

import "fmt"

// 标准 JSON-RPC 错误码
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// 服务器保留错误码区间 [-32099, -32000]
	CodeServerErrorStart = -32000
	CodeServerErrorEnd   = -32099
)

// 标准错误
var (
	ParseError = &Error{
		Code:    CodeParseError,
		Message: "Parse error",
	}

	InvalidRequestError = &Error{
		Code:    CodeInvalidRequest,
		Message: "Invalid request",
	}

	MethodNotFoundError = &Error{
		Code:    CodeMethodNotFound,
		Message: "Method not found",
	}

	InvalidParamsError = &Error{
		Code:    CodeInvalidParams,
		Message: "Invalid params",
	}

	InternalError = &Error{
		Code:    CodeInternalError,
		Message: "Internal error",
	}
)

// NewInvalidParams 创建带附加数据的无效参数错误
func NewInvalidParams(message string, data interface{}) *Error {
	return &Error{
		Code:    CodeInvalidParams,
		Message: message,
		Data:    data,
	}
}

// Errorf 创建带格式的错误
func Errorf(code int, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsServerError 检查错误码是否处于服务器保留区间
func IsServerError(code int) bool {
	return code <= CodeServerErrorStart && code >= CodeServerErrorEnd
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("JSON-RPC error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}
