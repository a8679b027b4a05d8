package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"
)

var paramsPool fastjson.ParserPool

// Param 是从 params 中取出的单个参数，保留其 JSON 类型以便调用方做类型检查
type Param struct {
	// Kind 为 JSON 类型名：string、number、object、array、true、false、null
	Kind string
	// Str 仅在 Kind 为 string 时有效
	Str string
	// Raw 为参数的原始 JSON 文本
	Raw string
}

// IsString 报告参数是否为 JSON 字符串
func (p Param) IsString() bool {
	return p.Kind == fastjson.TypeString.String()
}

func newParam(v *fastjson.Value) Param {
	param := Param{
		Kind: v.Type().String(),
		Raw:  v.String(),
	}
	if v.Type() == fastjson.TypeString {
		param.Str = string(v.GetStringBytes())
	}
	return param
}

// lookup 按位置（数组形式）或名称（对象形式）查找参数
func lookup(v *fastjson.Value, index int, name string) (*fastjson.Value, error) {
	switch v.Type() {
	case fastjson.TypeArray:
		arr, _ := v.Array()
		if index < 0 || index >= len(arr) {
			return nil, fmt.Errorf("expected at least %d parameters, got %d", index+1, len(arr))
		}
		return arr[index], nil
	case fastjson.TypeObject:
		item := v.Get(name)
		if item == nil {
			return nil, fmt.Errorf("missing parameter %q", name)
		}
		return item, nil
	default:
		return nil, fmt.Errorf("params must be an array or object, got %s", v.Type())
	}
}

// ParamAt 取出位置参数 index；若 params 为对象，则按 name 取值
//
// 参数缺失时返回错误，类型检查交给调用方。
func ParamAt(params json.RawMessage, index int, name string) (Param, error) {
	if len(params) == 0 {
		return Param{}, fmt.Errorf("params is required")
	}

	p := paramsPool.Get()
	defer paramsPool.Put(p)

	v, err := p.ParseBytes(params)
	if err != nil {
		return Param{}, fmt.Errorf("failed to parse params: %w", err)
	}

	item, err := lookup(v, index, name)
	if err != nil {
		return Param{}, err
	}
	return newParam(item), nil
}

// ArrayAt 取出位置参数 index 处的数组，数组元素保持原始 JSON 类型
func ArrayAt(params json.RawMessage, index int, name string) ([]Param, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("params is required")
	}

	p := paramsPool.Get()
	defer paramsPool.Put(p)

	v, err := p.ParseBytes(params)
	if err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}

	item, err := lookup(v, index, name)
	if err != nil {
		return nil, err
	}

	values, err := item.Array()
	if err != nil {
		return nil, fmt.Errorf("parameter %q must be an array, got %s", name, item.Type())
	}

	out := make([]Param, 0, len(values))
	for _, e := range values {
		out = append(out, newParam(e))
	}
	return out, nil
}
