package server

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mowind/multiaddress-go/internal/config"
	apperrors "github.com/mowind/multiaddress-go/internal/errors"
	"github.com/mowind/multiaddress-go/internal/router"
	"github.com/sirupsen/logrus"
)

// Server 表示 JSON-RPC HTTP 服务器
type Server struct {
	config   *config.Config
	engine   *gin.Engine
	rpc      *router.Router
	server   *http.Server
	listener net.Listener
	logger   apperrors.Logger
	stopping atomic.Bool
}

// New 创建新的 HTTP 服务器
func New(cfg *config.Config) (*Server, error) {
	return NewBuilder(cfg).Build()
}

// Handler 返回服务器的 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.engine
}

// setupRoutes 设置服务器路由
func (s *Server) setupRoutes() {
	// 健康检查端点
	s.engine.GET("/health", s.healthHandler)
	s.engine.GET("/ready", s.readyHandler)

	// JSON-RPC 端点
	s.engine.POST("/", s.jsonRPCHandler)
}

// healthHandler 处理健康检查请求
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// readyHandler 在全部地址方法已注册且未进入关闭流程时返回就绪
func (s *Server) readyHandler(c *gin.Context) {
	var missing []string
	for _, method := range router.AddressMethods {
		if !s.rpc.HasHandler(method) {
			missing = append(missing, method)
		}
	}

	if s.stopping.Load() || len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"missing": missing,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"methods": len(router.AddressMethods),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// jsonRPCHandler 将请求交给 JSON-RPC 路由器，日志带上请求ID
func (s *Server) jsonRPCHandler(c *gin.Context) {
	entry := s.logger.GetUnderlying().WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"remote":     c.ClientIP(),
	})
	s.rpc.HandleHTTPRequestWithContext(c.Writer, c.Request, entry)
}

// Start 启动 HTTP 服务器；监听失败时立即返回错误
func (s *Server) Start() error {
	addr := s.config.HTTP.Addr()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrorTypeConfig, apperrors.ErrConfig.Code, "failed to listen on %s", addr)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Infow("Starting HTTP server",
		"addr", ln.Addr().String(),
		"methods", s.rpc.GetRegisteredMethods(),
	)

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Errorw("HTTP server error")
		}
	}()

	return nil
}

// Addr 返回实际监听地址，未启动时为空
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop 优雅停止 HTTP 服务器
func (s *Server) Stop(ctx context.Context) error {
	s.stopping.Store(true)
	if s.server != nil {
		s.logger.Infow("Shutting down HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
