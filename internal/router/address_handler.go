package router

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/mowind/multiaddress-go/internal/address"
	apperrors "github.com/mowind/multiaddress-go/internal/errors"
	"github.com/mowind/multiaddress-go/internal/jsonrpc"
	"github.com/umbracle/ethgo"
)

// JSON-RPC 方法名
const (
	MethodToEvm    = "address_toEvm"
	MethodFromEvm  = "address_fromEvm"
	MethodConvert  = "address_convert"
	MethodValidate = "address_validate"
	MethodBatch    = "address_batch"
)

// AddressMethods 为 CreateRouter 注册的全部方法
var AddressMethods = []string{MethodToEvm, MethodFromEvm, MethodConvert, MethodValidate, MethodBatch}

// ConvertHandler 处理单地址转换方法：address_toEvm、address_fromEvm、address_convert
type ConvertHandler struct {
	*BaseHandler
	direction address.Direction
	convert   func(string) (string, error)
}

// NewConvertHandler 为指定方向创建转换处理器
func NewConvertHandler(method string, direction address.Direction, logger apperrors.Logger) (*ConvertHandler, error) {
	convert, err := direction.Func()
	if err != nil {
		return nil, err
	}
	return &ConvertHandler{
		BaseHandler: NewBaseHandler(method, logger),
		direction:   direction,
		convert:     convert,
	}, nil
}

// Handle 参数为 [addr] 或 {"address": addr}，结果为转换后的地址字符串
func (h *ConvertHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.LogRequest(request)

	param, err := jsonrpc.ParamAt(request.Params, 0, "address")
	if err != nil {
		return h.CreateInvalidParamsResponse(request.ID, err.Error()), nil
	}

	logger := h.logger.WithContext(ctx)
	if !param.IsString() {
		err := address.TypeError(param.Kind)
		logger.LogConversion(string(h.direction), param.Raw, "", err)
		return h.CreateAppErrorResponse(request.ID, err), nil
	}

	out, err := h.convert(param.Str)
	logger.LogConversion(string(h.direction), param.Str, out, err)
	if err != nil {
		return h.CreateAppErrorResponse(request.ID, err), nil
	}

	response, err := h.CreateSuccessResponse(request.ID, out)
	h.LogResponse(request, response, err)
	return response, err
}

// ValidateResult 为 address_validate 的结果
type ValidateResult struct {
	Valid       bool           `json:"valid"`
	Format      string         `json:"format"`
	Checksummed bool           `json:"checksummed"`
	Zero        bool           `json:"zero"`
	Evm         string         `json:"evm,omitempty"`
	Exchange    string         `json:"exchange,omitempty"`
	Error       *jsonrpc.Error `json:"error,omitempty"`
}

// ValidateHandler 处理 address_validate；地址无效时仍返回成功响应，valid 为 false
type ValidateHandler struct {
	*BaseHandler
}

// NewValidateHandler 创建校验处理器
func NewValidateHandler(logger apperrors.Logger) *ValidateHandler {
	return &ValidateHandler{BaseHandler: NewBaseHandler(MethodValidate, logger)}
}

// Handle 处理校验请求
func (h *ValidateHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.LogRequest(request)

	param, err := jsonrpc.ParamAt(request.Params, 0, "address")
	if err != nil {
		return h.CreateInvalidParamsResponse(request.ID, err.Error()), nil
	}

	var result ValidateResult
	if param.IsString() {
		result = Validate(param.Str)
	} else {
		result = ValidateResult{
			Format: address.FormatBare.String(),
			Error:  apperrors.ConvertToJSONRPC(address.TypeError(param.Kind)),
		}
	}

	response, err := h.CreateSuccessResponse(request.ID, result)
	h.LogResponse(request, response, err)
	return response, err
}

// Validate 给出 input 的格式、是否有效、是否已按 EIP-55 校验大小写以及两种形式。
// zero 标记全零地址，这类地址通常不应作为收款地址。
func Validate(input string) ValidateResult {
	result := ValidateResult{Format: address.Detect(input).String()}

	addr, err := address.Parse(input)
	if err != nil {
		result.Error = apperrors.ConvertToJSONRPC(err)
		return result
	}

	body := address.Checksum(hex.EncodeToString(addr[:]))
	result.Valid = true
	result.Zero = addr == ethgo.Address{}
	result.Evm = address.HexPrefix + body
	result.Exchange = address.ExchangePrefix + body
	result.Checksummed = address.IsChecksummed(input)
	return result
}

// BatchItem 为 address_batch 结果中的单项
type BatchItem struct {
	Input  interface{}    `json:"input"`
	Output string         `json:"output,omitempty"`
	Error  *jsonrpc.Error `json:"error,omitempty"`
}

// BatchHandler 处理 address_batch：参数为 [direction, [addr, ...]]
type BatchHandler struct {
	*BaseHandler
	workers int
	maxSize int
}

// NewBatchHandler 创建批量转换处理器
func NewBatchHandler(workers, maxSize int, logger apperrors.Logger) *BatchHandler {
	return &BatchHandler{
		BaseHandler: NewBaseHandler(MethodBatch, logger),
		workers:     workers,
		maxSize:     maxSize,
	}
}

// Handle 逐项转换，单项失败不影响其它项
func (h *BatchHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.LogRequest(request)

	dirParam, err := jsonrpc.ParamAt(request.Params, 0, "direction")
	if err != nil {
		return h.CreateInvalidParamsResponse(request.ID, err.Error()), nil
	}
	if !dirParam.IsString() {
		return h.CreateInvalidParamsResponse(request.ID, "direction must be a string"), nil
	}
	direction, err := address.ParseDirection(dirParam.Str)
	if err != nil {
		return h.CreateInvalidParamsResponse(request.ID, err.Error()), nil
	}

	params, err := jsonrpc.ArrayAt(request.Params, 1, "addresses")
	if err != nil {
		return h.CreateInvalidParamsResponse(request.ID, err.Error()), nil
	}
	if h.maxSize > 0 && len(params) > h.maxSize {
		return h.CreateErrorResponse(request.ID, jsonrpc.Errorf(jsonrpc.CodeInvalidParams,
			"too many addresses: %d exceeds limit of %d", len(params), h.maxSize)), nil
	}

	items := make([]BatchItem, len(params))

	// 非字符串项直接记为类型错误，其余交给工作池
	inputs := make([]string, 0, len(params))
	positions := make([]int, 0, len(params))
	for i, p := range params {
		if !p.IsString() {
			items[i] = BatchItem{
				Input: json.RawMessage(p.Raw),
				Error: apperrors.ConvertToJSONRPC(address.TypeError(p.Kind)),
			}
			continue
		}
		inputs = append(inputs, p.Str)
		positions = append(positions, i)
	}

	results, err := address.ConvertBatch(ctx, direction, inputs, h.workers)
	if err != nil {
		return nil, err
	}

	logger := h.logger.WithContext(ctx)
	for j, res := range results {
		logger.LogConversion(string(direction), res.Input, res.Output, res.Err)
		item := BatchItem{Input: res.Input, Output: res.Output}
		if res.Err != nil {
			item.Error = apperrors.ConvertToJSONRPC(res.Err)
		}
		items[positions[j]] = item
	}

	response, err := h.CreateSuccessResponse(request.ID, items)
	h.LogResponse(request, response, err)
	return response, err
}
