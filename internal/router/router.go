package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	apperrors "github.com/mowind/multiaddress-go/internal/errors"
	"github.com/mowind/multiaddress-go/internal/jsonrpc"
	"github.com/sirupsen/logrus"
)

// Handler defines a JSON-RPC method handler interface.
//
// Implementations of this interface can be registered with the Router
// to handle specific JSON-RPC methods.
type Handler interface {
	// Handle processes a JSON-RPC request.
	//
	// Parameters:
	//   - ctx: Context for request (supports cancellation and timeout)
	//   - request: The JSON-RPC request to handle
	//
	// Returns:
	//   - *jsonrpc.Response: The response to return to client
	//   - error: An error if handling fails
	Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error)

	// Method returns the JSON-RPC method name this handler supports.
	//
	// Returns:
	//   - string: The method name (e.g., "address_toEvm")
	Method() string
}

const (
	// DefaultMaxRequestSize 默认请求体上限（1MB）
	DefaultMaxRequestSize = 1024 * 1024

	// DefaultMaxBatchSize defines the default maximum number of requests allowed in a batch
	DefaultMaxBatchSize = 100

	// DefaultBatchWorkerCount defines the default number of workers for batch request processing
	DefaultBatchWorkerCount = 8
)

// Router routes JSON-RPC requests to appropriate handlers.
//
// This router supports:
//   - Method-based handler registration
//   - Thread-safe operations
//   - Request and batch size limiting
type Router struct {
	handlers       map[string]Handler
	mu             sync.RWMutex
	logger         *logrus.Logger
	maxRequestSize int64 // 最大请求体大小（字节）
	maxBatchSize   int
	batchWorkers   int
}

// NewRouter creates a new JSON-RPC router with default settings.
//
// Parameters:
//   - logger: The logger to use for request logging
//
// Returns:
//   - *Router: A new router instance
func NewRouter(logger *logrus.Logger) *Router {
	return NewRouterWithMaxSize(logger, DefaultMaxRequestSize)
}

// NewRouterWithMaxSize creates a new JSON-RPC router with custom max request size.
//
// Parameters:
//   - logger: The logger to use for request logging
//   - maxRequestSize: Maximum allowed request body size in bytes
//
// Returns:
//   - *Router: A new router instance
func NewRouterWithMaxSize(logger *logrus.Logger, maxRequestSize int64) *Router {
	if maxRequestSize <= 0 {
		maxRequestSize = DefaultMaxRequestSize
	}
	return &Router{
		handlers:       make(map[string]Handler),
		logger:         logger,
		maxRequestSize: maxRequestSize,
		maxBatchSize:   DefaultMaxBatchSize,
		batchWorkers:   DefaultBatchWorkerCount,
	}
}

// SetBatchLimits 设置批量请求的最大长度与并发数，非正值保持原设置
func (r *Router) SetBatchLimits(maxBatchSize, workers int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxBatchSize > 0 {
		r.maxBatchSize = maxBatchSize
	}
	if workers > 0 {
		r.batchWorkers = workers
	}
}

// MaxBatchSize 返回批量请求的最大长度
func (r *Router) MaxBatchSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxBatchSize
}

// Register registers a JSON-RPC method handler.
//
// The handler's Method() return value is used as the registration key.
//
// Parameters:
//   - handler: The handler to register
//
// Returns:
//   - error: An error if handler method is empty or already registered
func (r *Router) Register(handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	method := handler.Method()
	if method == "" {
		return fmt.Errorf("handler method name cannot be empty")
	}

	if _, exists := r.handlers[method]; exists {
		return fmt.Errorf("handler for method %s already registered", method)
	}

	r.handlers[method] = handler
	r.logger.WithField("method", method).Info("Registered JSON-RPC handler")
	return nil
}

// routeRequest performs handler lookup, execution, and error handling for a
// single request.
func (r *Router) routeRequest(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) *jsonrpc.Response {
	if request == nil {
		return jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)
	}

	logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	}).Debug("Routing request")

	handler, found := r.lookupHandler(request.Method)
	if !found {
		logger.WithField("method", request.Method).Warn("Method not found")
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.MethodNotFoundError)
	}

	// 处理器日志通过 context 获取方法名
	ctx = apperrors.NewContextWithOperation(ctx, request.Method)
	response, err := handler.Handle(ctx, request)
	if err != nil {
		logger.WithError(err).Error("Handler execution failed")

		if jsonErr, ok := err.(*jsonrpc.Error); ok {
			return jsonrpc.NewErrorResponse(request.ID, jsonErr)
		}

		return jsonrpc.NewErrorResponse(request.ID, &jsonrpc.Error{
			Code:    jsonrpc.CodeInternalError,
			Message: "Internal server error",
			Data:    err.Error(),
		})
	}

	if response == nil {
		logger.Error("Handler returned nil response")
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.InternalError)
	}

	response.ID = request.ID
	response.JSONRPC = jsonrpc.JSONRPCVersion

	logger.Debug("Request routed successfully")
	return response
}

// RouteWithContext routes a single request using the provided logger entry.
//
// This is useful for maintaining log context across request lifecycle.
func (r *Router) RouteWithContext(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) *jsonrpc.Response {
	return r.routeRequest(ctx, request, logger)
}

// Route routes a single JSON-RPC request to the appropriate handler.
//
// Parameters:
//   - ctx: Context for request (supports cancellation and timeout)
//   - request: The JSON-RPC request to route
//
// Returns:
//   - *jsonrpc.Response: The response from the handler
func (r *Router) Route(ctx context.Context, request *jsonrpc.Request) *jsonrpc.Response {
	if request == nil {
		r.logger.Warn("Received nil JSON-RPC request")
		return jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)
	}
	logger := r.logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	})
	return r.routeRequest(ctx, request, logger)
}

// RouteBatch routes a batch of JSON-RPC requests.
//
// Each request in the batch is routed independently using a worker pool.
//
// Parameters:
//   - ctx: Context for requests (supports cancellation and timeout)
//   - requests: The JSON-RPC requests to route
//
// Returns:
//   - []*jsonrpc.Response: Ordered responses matching request order
func (r *Router) RouteBatch(ctx context.Context, requests []jsonrpc.Request) []*jsonrpc.Response {
	return r.routeBatch(ctx, requests, logrus.NewEntry(r.logger))
}

func (r *Router) routeBatch(ctx context.Context, requests []jsonrpc.Request, logger *logrus.Entry) []*jsonrpc.Response {
	if len(requests) == 0 {
		return []*jsonrpc.Response{
			jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError),
		}
	}

	r.mu.RLock()
	maxBatchSize, workerCount := r.maxBatchSize, r.batchWorkers
	r.mu.RUnlock()

	if len(requests) > maxBatchSize {
		logger.WithField("count", len(requests)).Warn("Batch size exceeds limit")
		return []*jsonrpc.Response{batchTooLarge(maxBatchSize)}
	}

	logger.WithField("count", len(requests)).Info("Routing batch requests")

	responses := make([]*jsonrpc.Response, len(requests))

	taskCount := len(requests)
	taskCh := make(chan int, taskCount)
	if taskCount < workerCount {
		workerCount = taskCount
	}

	for i := 0; i < taskCount; i++ {
		taskCh <- i
	}
	close(taskCh)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for idx := range taskCh {
				if ctx.Err() != nil {
					responses[idx] = jsonrpc.NewErrorResponse(requests[idx].ID, &jsonrpc.Error{
						Code:    jsonrpc.CodeInternalError,
						Message: "Request cancelled",
						Data:    ctx.Err().Error(),
					})
					continue
				}

				func() {
					defer func() {
						if p := recover(); p != nil {
							logger.WithField("worker_id", workerID).WithField("panic", p).Error("Worker panic recovered")
							responses[idx] = jsonrpc.NewErrorResponse(requests[idx].ID, jsonrpc.InternalError)
						}
					}()

					responses[idx] = r.routeRequest(ctx, &requests[idx], logger)
				}()
			}
		}(i)
	}

	wg.Wait()

	logger.WithFields(logrus.Fields{
		"request_count":  taskCount,
		"response_count": len(responses),
	}).Info("Batch routing completed")
	return responses
}

func batchTooLarge(limit int) *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(nil, jsonrpc.NewInvalidParams(
		"Invalid params", fmt.Sprintf("Batch size exceeds maximum limit of %d", limit)))
}

func (r *Router) lookupHandler(method string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, found := r.handlers[method]
	return handler, found
}

// GetRegisteredMethods returns a list of all registered method names.
func (r *Router) GetRegisteredMethods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]string, 0, len(r.handlers))
	for method := range r.handlers {
		methods = append(methods, method)
	}

	return methods
}

// HasHandler checks if a handler is registered for the given method.
func (r *Router) HasHandler(method string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, found := r.handlers[method]
	return found
}

// parseAndRoute parses the request body and routes requests to handlers.
func (r *Router) parseAndRoute(w http.ResponseWriter, req *http.Request, logger *logrus.Entry, body []byte) {
	requests, err := jsonrpc.ParseRequest(body)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse JSON-RPC request")
		// 合法 JSON 但结构不符视为无效请求
		jsonErr := jsonrpc.ParseError
		if json.Valid(body) {
			jsonErr = jsonrpc.InvalidRequestError
		}
		writeJSON(w, logger, http.StatusOK, jsonrpc.NewErrorResponse(nil, jsonErr))
		return
	}

	batch := jsonrpc.IsBatch(body)

	if limit := r.MaxBatchSize(); len(requests) > limit {
		logger.WithField("count", len(requests)).Warn("Batch size exceeds limit")
		writeJSON(w, logger, http.StatusOK, batchTooLarge(limit))
		return
	}

	var responses []*jsonrpc.Response
	if batch {
		responses = r.routeBatch(req.Context(), requests, logger)
	} else {
		responses = []*jsonrpc.Response{r.RouteWithContext(req.Context(), &requests[0], logger)}
	}

	data, err := jsonrpc.MarshalResponses(responses, batch)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal JSON-RPC responses")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.WithError(err).Error("Failed to write response")
	}
}

func writeJSON(w http.ResponseWriter, logger *logrus.Entry, status int, resp *jsonrpc.Response) {
	data, err := jsonrpc.MarshalResponse(resp)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal JSON-RPC response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.WithError(err).Error("Failed to write response")
	}
}

// HandleHTTPRequestWithContext handles HTTP requests with context-aware logging.
//
// The body is limited to the router's max request size; larger bodies get
// HTTP 413 with a JSON-RPC error payload.
//
// Parameters:
//   - w: HTTP response writer
//   - req: HTTP request
//   - logger: Logger entry with context fields for tracing
func (r *Router) HandleHTTPRequestWithContext(w http.ResponseWriter, req *http.Request, logger *logrus.Entry) {
	maxBody := r.maxRequestSize
	limitedBody := http.MaxBytesReader(w, req.Body, maxBody)
	body, err := io.ReadAll(limitedBody)
	if err != nil {
		logger.WithError(err).WithField("max_size_bytes", maxBody).Error("Request body too large")
		writeJSON(w, logger, http.StatusRequestEntityTooLarge,
			jsonrpc.NewErrorResponse(nil, jsonrpc.NewInvalidParams("Request entity too large", nil)))
		return
	}

	r.parseAndRoute(w, req, logger, body)
}

// HandleHTTPRequest handles HTTP requests using the router's own logger.
func (r *Router) HandleHTTPRequest(w http.ResponseWriter, req *http.Request) {
	r.HandleHTTPRequestWithContext(w, req, logrus.NewEntry(r.logger))
}
