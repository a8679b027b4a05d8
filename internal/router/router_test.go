package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/mowind/multiaddress-go/internal/errors"
	"github.com/mowind/multiaddress-go/internal/jsonrpc"
	"github.com/sirupsen/logrus"
)

// mockHandler 是 Handler 接口的 mock 实现
type mockHandler struct {
	method      string
	handleFunc  func(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error)
	shouldError bool
	shouldPanic bool
}

func (m *mockHandler) Method() string {
	return m.method
}

func (m *mockHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	if m.shouldPanic {
		panic("mock handler panic")
	}
	if m.shouldError {
		return nil, fmt.Errorf("mock handler error")
	}
	if m.handleFunc != nil {
		return m.handleFunc(ctx, request)
	}
	return jsonrpc.NewResponse(request.ID, "mock_result")
}

func newTestRouter(t *testing.T, handlers ...Handler) *Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	router := NewRouter(logger)
	for _, h := range handlers {
		if err := router.Register(h); err != nil {
			t.Fatalf("Failed to register handler: %v", err)
		}
	}
	return router
}

// echoHandler 返回请求 ID 作为结果
func echoHandler(method string) *mockHandler {
	return &mockHandler{
		method: method,
		handleFunc: func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			return jsonrpc.NewResponse(req.ID, fmt.Sprintf("result_for_%v", req.ID))
		},
	}
}

func TestRouter_Register(t *testing.T) {
	router := newTestRouter(t)

	handler := &mockHandler{method: "test_method"}
	if err := router.Register(handler); err != nil {
		t.Fatalf("Failed to register handler: %v", err)
	}

	// 重复注册失败
	if err := router.Register(handler); err == nil {
		t.Error("Expected error for duplicate registration, got nil")
	}

	if err := router.Register(&mockHandler{method: ""}); err == nil {
		t.Error("Expected error for empty method name, got nil")
	}
}

func TestRouter_Route(t *testing.T) {
	router := newTestRouter(t,
		echoHandler("test_method"),
		&mockHandler{method: "error_method", shouldError: true},
		&mockHandler{method: "jsonrpc_error_method", handleFunc: func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			return nil, jsonrpc.NewInvalidParams("Invalid parameters", nil)
		}},
		&mockHandler{method: "nil_method", handleFunc: func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			return nil, nil
		}},
	)

	tests := []struct {
		name     string
		method   string
		wantCode int
	}{
		{"success", "test_method", 0},
		{"method not found", "unknown_method", jsonrpc.CodeMethodNotFound},
		{"handler error", "error_method", jsonrpc.CodeInternalError},
		{"jsonrpc error", "jsonrpc_error_method", jsonrpc.CodeInvalidParams},
		{"nil response", "nil_method", jsonrpc.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := &jsonrpc.Request{JSONRPC: "2.0", Method: tt.method, ID: "test_id"}
			response := router.Route(context.Background(), request)
			if response == nil {
				t.Fatal("Expected response, got nil")
			}
			if response.ID != "test_id" {
				t.Errorf("Expected ID test_id, got %v", response.ID)
			}
			if tt.wantCode == 0 {
				if response.Error != nil {
					t.Fatalf("Expected no error, got: %v", response.Error)
				}
				var result string
				if err := json.Unmarshal(response.Result, &result); err != nil {
					t.Fatalf("Failed to unmarshal result: %v", err)
				}
				if result != "result_for_test_id" {
					t.Errorf("Unexpected result %q", result)
				}
				return
			}
			if response.Error == nil || response.Error.Code != tt.wantCode {
				t.Errorf("Expected error code %d, got %+v", tt.wantCode, response.Error)
			}
		})
	}
}

func TestRouter_Route_NilRequest(t *testing.T) {
	router := newTestRouter(t)

	response := router.Route(context.Background(), nil)
	if response.Error == nil || response.Error.Code != jsonrpc.CodeInvalidRequest {
		t.Errorf("Expected invalid request error, got %+v", response.Error)
	}
}

func TestRouter_UnknownMethod(t *testing.T) {
	router := newTestRouter(t, echoHandler("known"))

	response := router.Route(context.Background(), &jsonrpc.Request{JSONRPC: "2.0", Method: "anything", ID: float64(1)})
	if response.Error == nil || response.Error.Code != jsonrpc.CodeMethodNotFound {
		t.Fatalf("Expected method not found, got %+v", response.Error)
	}
	if router.HasHandler("anything") {
		t.Error("Unknown method must not count as registered")
	}
}

func TestRouter_OperationInContext(t *testing.T) {
	var seen string
	handler := &mockHandler{
		method: "address_toEvm",
		handleFunc: func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			seen = apperrors.GetOperation(ctx)
			return jsonrpc.NewResponse(req.ID, "ok")
		},
	}
	router := newTestRouter(t, handler)

	response := router.Route(context.Background(), &jsonrpc.Request{JSONRPC: "2.0", Method: "address_toEvm", ID: float64(1)})
	if response.Error != nil {
		t.Fatalf("Unexpected error: %v", response.Error)
	}
	if seen != "address_toEvm" {
		t.Errorf("Expected operation address_toEvm in context, got %q", seen)
	}
}

func TestRouter_RouteBatch(t *testing.T) {
	router := newTestRouter(t, echoHandler("batch_method"), &mockHandler{method: "panic_method", shouldPanic: true})

	requests := []jsonrpc.Request{
		{JSONRPC: "2.0", Method: "batch_method", ID: "id1"},
		{JSONRPC: "2.0", Method: "panic_method", ID: "id2"},
		{JSONRPC: "2.0", Method: "batch_method", ID: "id3"},
	}

	responses := router.RouteBatch(context.Background(), requests)
	if len(responses) != len(requests) {
		t.Fatalf("Expected %d responses, got %d", len(requests), len(responses))
	}

	for i, response := range responses {
		if response == nil {
			t.Fatalf("Response %d is nil", i)
		}
		if response.ID != requests[i].ID {
			t.Errorf("Response %d: expected ID %v, got %v", i, requests[i].ID, response.ID)
		}
	}
	if responses[1].Error == nil || responses[1].Error.Code != jsonrpc.CodeInternalError {
		t.Errorf("Expected recovered panic to become internal error, got %+v", responses[1].Error)
	}
	if responses[0].Error != nil || responses[2].Error != nil {
		t.Error("Expected other requests to succeed")
	}
}

func TestRouter_RouteBatch_Limits(t *testing.T) {
	router := newTestRouter(t, echoHandler("batch_method"))

	responses := router.RouteBatch(context.Background(), []jsonrpc.Request{})
	if len(responses) != 1 || responses[0].Error.Code != jsonrpc.CodeInvalidRequest {
		t.Errorf("Expected single invalid request error for empty batch, got %+v", responses)
	}

	router.SetBatchLimits(2, 1)
	if router.MaxBatchSize() != 2 {
		t.Errorf("Expected max batch size 2, got %d", router.MaxBatchSize())
	}
	requests := make([]jsonrpc.Request, 3)
	for i := range requests {
		requests[i] = jsonrpc.Request{JSONRPC: "2.0", Method: "batch_method", ID: float64(i)}
	}
	responses = router.RouteBatch(context.Background(), requests)
	if len(responses) != 1 || responses[0].Error.Code != jsonrpc.CodeInvalidParams {
		t.Errorf("Expected single invalid params error for oversized batch, got %+v", responses)
	}

	// 非正值保持原设置
	router.SetBatchLimits(0, -1)
	if router.MaxBatchSize() != 2 {
		t.Errorf("Expected max batch size unchanged, got %d", router.MaxBatchSize())
	}
}

func TestRouter_RouteBatch_Cancelled(t *testing.T) {
	router := newTestRouter(t, echoHandler("batch_method"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	responses := router.RouteBatch(ctx, []jsonrpc.Request{
		{JSONRPC: "2.0", Method: "batch_method", ID: "a"},
		{JSONRPC: "2.0", Method: "batch_method", ID: "b"},
	})
	for i, response := range responses {
		if response == nil || response.Error == nil {
			t.Errorf("Response %d: expected cancellation error", i)
		}
	}
}

func TestRouter_GetRegisteredMethods(t *testing.T) {
	methods := []string{"method1", "method2", "method3"}
	router := newTestRouter(t)
	for _, m := range methods {
		if err := router.Register(&mockHandler{method: m}); err != nil {
			t.Fatalf("Failed to register handler %s: %v", m, err)
		}
	}

	registered := make(map[string]bool)
	for _, m := range router.GetRegisteredMethods() {
		registered[m] = true
	}
	for _, m := range methods {
		if !registered[m] {
			t.Errorf("Method %s not found in registered methods", m)
		}
	}

	if !router.HasHandler("method1") {
		t.Error("Expected method1 to be registered")
	}
	if router.HasHandler("method4") {
		t.Error("Expected method4 to be unknown")
	}
}

func postJSON(t *testing.T, router *Router, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.HandleHTTPRequest(w, req)

	resp := w.Result()
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return resp, data
}

func TestRouter_HandleHTTPRequest(t *testing.T) {
	router := newTestRouter(t, echoHandler("test_method"))
	router.SetBatchLimits(3, 2)

	tests := []struct {
		name      string
		body      string
		wantArray bool
		wantCode  int
		wantLen   int
	}{
		{"single", `{"jsonrpc":"2.0","id":1,"method":"test_method","params":[]}`, false, 0, 0},
		{"batch", `[{"jsonrpc":"2.0","id":1,"method":"test_method"},{"jsonrpc":"2.0","id":2,"method":"test_method"}]`, true, 0, 2},
		{"batch of one", `[{"jsonrpc":"2.0","id":1,"method":"test_method"}]`, true, 0, 1},
		{"parse error", `{"jsonrpc":`, false, jsonrpc.CodeParseError, 0},
		{"invalid request", `{"jsonrpc":"1.0","id":1,"method":"test_method"}`, false, jsonrpc.CodeInvalidRequest, 0},
		{"empty batch", `[]`, false, jsonrpc.CodeInvalidRequest, 0},
		{"batch too large", `[` + strings.Repeat(`{"jsonrpc":"2.0","id":1,"method":"test_method"},`, 3) + `{"jsonrpc":"2.0","id":1,"method":"test_method"}]`, false, jsonrpc.CodeInvalidParams, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := postJSON(t, router, tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}

			if tt.wantArray {
				var responses []jsonrpc.Response
				if err := json.Unmarshal(data, &responses); err != nil {
					t.Fatalf("Expected array response: %v (%s)", err, data)
				}
				if len(responses) != tt.wantLen {
					t.Errorf("Expected %d responses, got %d", tt.wantLen, len(responses))
				}
				return
			}

			var response jsonrpc.Response
			if err := json.Unmarshal(data, &response); err != nil {
				t.Fatalf("Expected object response: %v (%s)", err, data)
			}
			if tt.wantCode == 0 {
				if response.Error != nil {
					t.Errorf("Unexpected error %+v", response.Error)
				}
				return
			}
			if response.Error == nil || response.Error.Code != tt.wantCode {
				t.Errorf("Expected error code %d, got %+v", tt.wantCode, response.Error)
			}
		})
	}
}

func TestRouter_MaxRequestSize(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	router := NewRouterWithMaxSize(logger, 1024)
	if err := router.Register(&mockHandler{method: "test_method"}); err != nil {
		t.Fatalf("Failed to register handler: %v", err)
	}

	tests := []struct {
		name       string
		padding    int
		wantStatus int
	}{
		{"request within limit", 512, http.StatusOK},
		{"request exceeds limit", 2048, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"jsonrpc":"2.0","id":1,"method":"test_method","params":[]}` + strings.Repeat(" ", tt.padding)
			resp, data := postJSON(t, router, body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.wantStatus, resp.StatusCode, data)
			}
		})
	}
}

func TestRouter_RouteAndRouteWithContext(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	router := NewRouter(logger)
	if err := router.Register(echoHandler("test_method")); err != nil {
		t.Fatalf("Failed to register handler: %v", err)
	}

	for _, method := range []string{"test_method", "unknown_method"} {
		request := &jsonrpc.Request{JSONRPC: "2.0", Method: method, ID: "test_id"}
		r1 := router.Route(context.Background(), request)
		r2 := router.RouteWithContext(context.Background(), request, logger.WithField("test", "value"))

		if (r1.Error == nil) != (r2.Error == nil) {
			t.Errorf("%s: Route error=%v, RouteWithContext error=%v", method, r1.Error, r2.Error)
		}
		if r1.Error != nil && r2.Error != nil && r1.Error.Code != r2.Error.Code {
			t.Errorf("%s: error codes mismatch: %d vs %d", method, r1.Error.Code, r2.Error.Code)
		}
		if r1.ID != r2.ID {
			t.Errorf("%s: IDs mismatch: %v vs %v", method, r1.ID, r2.ID)
		}
	}
}
