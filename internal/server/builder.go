package server

import (
	"github.com/gin-gonic/gin"
	"github.com/mowind/multiaddress-go/internal/config"
	apperrors "github.com/mowind/multiaddress-go/internal/errors"
	"github.com/mowind/multiaddress-go/internal/router"
	ginlogrus "github.com/toorop/gin-logrus"
)

// Builder 服务器构建器
type Builder struct {
	cfg    *config.Config
	logger apperrors.Logger
}

// NewBuilder 创建新的服务器构建器
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithLogger 使用已有日志器，未设置时按配置创建
func (b *Builder) WithLogger(logger apperrors.Logger) *Builder {
	b.logger = logger
	return b
}

// Build 构建服务器
func (b *Builder) Build() (*Server, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.ErrConfig.Code, "invalid server configuration")
	}

	b.setGinMode()

	logger, err := b.createLogger()
	if err != nil {
		return nil, err
	}

	rpc, err := router.NewRouterFactory(logger).CreateRouter(b.cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: b.cfg,
		engine: b.createEngine(logger),
		rpc:    rpc,
		logger: logger,
	}

	s.setupRoutes()
	return s, nil
}

// setGinMode 设置 gin 模式
func (b *Builder) setGinMode() {
	if b.cfg.Log.Level == config.LogLevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// createEngine 创建 gin 引擎并挂载中间件
func (b *Builder) createEngine(logger apperrors.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	engine.Use(ginlogrus.Logger(logger.GetUnderlying()))
	engine.Use(AuthMiddleware(b.cfg.Auth.Enabled, b.cfg.Auth.Secret, b.cfg.Auth.Whitelist))
	return engine
}

// createLogger 创建日志器
func (b *Builder) createLogger() (apperrors.Logger, error) {
	if b.logger != nil {
		return b.logger, nil
	}
	logger, err := apperrors.NewLogger(&apperrors.LoggerConfig{
		Level:  b.cfg.Log.Level,
		Format: b.cfg.Log.Format,
		Output: "stderr",
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.ErrConfig.Code, "failed to create logger")
	}
	return logger, nil
}
