package errors

import (
	stderrors "errors"

	"github.com/mowind/multiaddress-go/internal/address"
	"github.com/mowind/multiaddress-go/internal/jsonrpc"
)

// Converter 错误转换器
type Converter struct{}

// NewConverter 创建新的错误转换器
func NewConverter() *Converter {
	return &Converter{}
}

// FromAddress 将地址编解码错误转换为应用错误，并把字段放入上下文
func (c *Converter) FromAddress(err error) *AppError {
	if err == nil {
		return nil
	}

	var addrErr *address.Error
	if !stderrors.As(err, &addrErr) {
		return Wrap(err, ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal error")
	}

	var appErr *AppError
	switch addrErr.Kind {
	case address.KindType:
		appErr = Wrap(err, ErrorTypeInputType, CodeInputType, "Address must be a string")
		if addrErr.Type != "" {
			appErr.WithContext("type", addrErr.Type)
		}
	case address.KindLength:
		appErr = Wrap(err, ErrorTypeAddressLength, CodeAddressLength, "Invalid address length").
			WithContext("expected", addrErr.Expected).
			WithContext("actual", addrErr.Actual)
	case address.KindCharset:
		appErr = Wrap(err, ErrorTypeAddressCharset, CodeAddressCharset, "Invalid hex characters in address").
			WithContext("char", string(addrErr.Char)).
			WithContext("position", addrErr.Pos)
	case address.KindChecksum:
		appErr = Wrap(err, ErrorTypeAddressChecksum, CodeAddressChecksum, "Invalid address checksum").
			WithContext("want", addrErr.Want)
	default:
		appErr = Wrap(err, ErrorTypeValidation, jsonrpc.CodeInvalidParams, "Invalid address")
	}
	return appErr.WithContext("kind", addrErr.Kind.String())
}

// FromJSONRPC 从 JSON-RPC 错误转换
func (c *Converter) FromJSONRPC(jsonErr *jsonrpc.Error) *AppError {
	if jsonErr == nil {
		return nil
	}

	var errorType ErrorType
	switch jsonErr.Code {
	case jsonrpc.CodeParseError, jsonrpc.CodeInvalidRequest:
		errorType = ErrorTypeJSONRPC
	case jsonrpc.CodeMethodNotFound:
		errorType = ErrorTypeMethodNotFound
	case jsonrpc.CodeInvalidParams:
		errorType = ErrorTypeInvalidParams
	case jsonrpc.CodeInternalError:
		errorType = ErrorTypeInternal
	default:
		if jsonrpc.IsServerError(jsonErr.Code) {
			errorType = ErrorTypeInternal
		} else {
			errorType = ErrorTypeJSONRPC
		}
	}

	appErr := &AppError{
		Type:    errorType,
		Code:    jsonErr.Code,
		Message: jsonErr.Message,
		Context: map[string]interface{}{},
	}
	if jsonErr.Data != nil {
		appErr.Context["original_data"] = jsonErr.Data
	}
	return appErr
}

// ConvertError 通用的错误转换函数
func ConvertError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var addrErr *address.Error
	if stderrors.As(err, &addrErr) {
		return NewConverter().FromAddress(err)
	}

	var jsonErr *jsonrpc.Error
	if stderrors.As(err, &jsonErr) {
		return NewConverter().FromJSONRPC(jsonErr)
	}

	return Wrap(err, ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal error")
}

// ConvertToJSONRPC 快速转换为 JSON-RPC 错误
func ConvertToJSONRPC(err error) *jsonrpc.Error {
	if err == nil {
		return nil
	}
	return ConvertError(err).ToJSONRPCError()
}

// IsClientError 检查是否是调用方输入导致的错误
func IsClientError(err error) bool {
	appErr := ConvertError(err)
	if appErr == nil {
		return false
	}
	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeInvalidParams, ErrorTypeMethodNotFound, ErrorTypeJSONRPC,
		ErrorTypeInputType, ErrorTypeAddressLength, ErrorTypeAddressCharset, ErrorTypeAddressChecksum:
		return true
	}
	return false
}

// IsServerError 检查是否是服务端错误
func IsServerError(err error) bool {
	return err != nil && !IsClientError(err)
}
