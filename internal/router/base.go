package router

import (
	"fmt"

	apperrors "github.com/mowind/multiaddress-go/internal/errors"
	"github.com/mowind/multiaddress-go/internal/jsonrpc"
)

// BaseHandler 提供处理器的基础功能
type BaseHandler struct {
	method string
	logger apperrors.Logger
}

// NewBaseHandler 创建基础处理器
func NewBaseHandler(method string, logger apperrors.Logger) *BaseHandler {
	return &BaseHandler{
		method: method,
		logger: logger.WithOperation(method),
	}
}

// Method 返回方法名
func (h *BaseHandler) Method() string {
	return h.method
}

// CreateSuccessResponse 创建成功响应
func (h *BaseHandler) CreateSuccessResponse(id interface{}, result interface{}) (*jsonrpc.Response, error) {
	response, err := jsonrpc.NewResponse(id, result)
	if err != nil {
		h.logger.WithError(err).Errorw("Failed to create success response")
		return nil, fmt.Errorf("failed to create response: %v", err)
	}
	return response, nil
}

// CreateErrorResponse 创建错误响应
func (h *BaseHandler) CreateErrorResponse(id interface{}, err *jsonrpc.Error) *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(id, err)
}

// CreateInvalidParamsResponse 创建无效参数响应
func (h *BaseHandler) CreateInvalidParamsResponse(id interface{}, message string) *jsonrpc.Response {
	return h.CreateErrorResponse(id, jsonrpc.NewInvalidParams(message, nil))
}

// CreateAppErrorResponse 将地址错误等应用错误转换为 JSON-RPC 错误响应。
// 调用方输入错误由转换日志记录，服务端错误在此记录。
func (h *BaseHandler) CreateAppErrorResponse(id interface{}, err error) *jsonrpc.Response {
	if apperrors.IsServerError(err) {
		h.logger.LogError(apperrors.ConvertError(err), "id", id)
	}
	return h.CreateErrorResponse(id, apperrors.ConvertToJSONRPC(err))
}

// LogRequest 记录请求日志
func (h *BaseHandler) LogRequest(request *jsonrpc.Request) {
	h.logger.Debugw("Processing JSON-RPC request",
		"method", request.Method,
		"id", request.ID,
		"params", string(request.Params),
	)
}

// LogResponse 记录响应日志
func (h *BaseHandler) LogResponse(request *jsonrpc.Request, response *jsonrpc.Response, err error) {
	switch {
	case err != nil:
		h.logger.WithError(err).Errorw("Request processing failed", "method", request.Method, "id", request.ID)
	case response != nil && response.Error != nil:
		h.logger.Warnw("Request returned error",
			"method", request.Method,
			"id", request.ID,
			"error_code", response.Error.Code,
			"error_message", response.Error.Message,
		)
	default:
		h.logger.Debugw("Request processed successfully", "method", request.Method, "id", request.ID)
	}
}
