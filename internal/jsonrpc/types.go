package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONRPCVersion 协议版本
const JSONRPCVersion = "2.0"

// Request 表示 JSON-RPC 2.0 请求
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"`
}

// Response 表示 JSON-RPC 2.0 响应
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      interface{}     `json:"id"`
}

// Error 表示 JSON-RPC 2.0 错误
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// IsBatch 判断请求体是否为批量请求（以 '[' 开头）
func IsBatch(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// ParseRequest 解析 JSON-RPC 请求，支持单个请求和批量请求
func ParseRequest(data []byte) ([]Request, error) {
	if !IsBatch(data) {
		var singleReq Request
		if err := json.Unmarshal(data, &singleReq); err != nil {
			return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
		}
		if err := validateRequest(&singleReq); err != nil {
			return nil, err
		}
		return []Request{singleReq}, nil
	}

	var batchReqs []Request
	if err := json.Unmarshal(data, &batchReqs); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	if len(batchReqs) == 0 {
		return nil, fmt.Errorf("empty batch request")
	}

	for i := range batchReqs {
		if err := validateRequest(&batchReqs[i]); err != nil {
			return nil, fmt.Errorf("request at index %d: %w", i, err)
		}
	}

	return batchReqs, nil
}

// validateRequest 验证单个请求
func validateRequest(req *Request) error {
	if req.JSONRPC != JSONRPCVersion {
		return fmt.Errorf("invalid jsonrpc version: %s", req.JSONRPC)
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	// ID 可以是 null、字符串或数字
	if req.ID != nil {
		switch v := req.ID.(type) {
		case string, float64:
		default:
			return fmt.Errorf("invalid id type: %T", v)
		}
	}

	return nil
}

// NewResponse 创建成功响应
func NewResponse(id interface{}, result interface{}) (*Response, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	return &Response{
		JSONRPC: JSONRPCVersion,
		Result:  resultJSON,
		ID:      id,
	}, nil
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(id interface{}, err *Error) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		Error:   err,
		ID:      id,
	}
}

// MarshalResponse 序列化响应
func MarshalResponse(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

// MarshalResponses 序列化响应；batch 为 true 时总是返回数组
func MarshalResponses(responses []*Response, batch bool) ([]byte, error) {
	if len(responses) == 1 && !batch {
		return MarshalResponse(responses[0])
	}
	return json.Marshal(responses)
}
