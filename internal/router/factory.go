package router

import (
	"github.com/mowind/multiaddress-go/internal/address"
	"github.com/mowind/multiaddress-go/internal/config"
	apperrors "github.com/mowind/multiaddress-go/internal/errors"
)

// RouterFactory 路由器工厂，简化路由器的创建和配置
type RouterFactory struct {
	logger apperrors.Logger
}

// NewRouterFactory 创建路由器工厂
func NewRouterFactory(logger apperrors.Logger) *RouterFactory {
	return &RouterFactory{
		logger: logger,
	}
}

// CreateRouter 创建注册了全部地址方法的路由器
func (f *RouterFactory) CreateRouter(cfg *config.Config) (*Router, error) {
	router := NewRouterWithMaxSize(f.logger.GetUnderlying(), cfg.HTTP.MaxRequestSize())
	router.SetBatchLimits(cfg.Batch.MaxSize, cfg.Batch.Workers)

	converters := []struct {
		method    string
		direction address.Direction
	}{
		{MethodToEvm, address.DirectionToEvm},
		{MethodFromEvm, address.DirectionFromEvm},
		{MethodConvert, address.DirectionConvert},
	}

	handlers := make([]Handler, 0, len(converters)+2)
	for _, c := range converters {
		h, err := NewConvertHandler(c.method, c.direction, f.logger)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	handlers = append(handlers,
		NewValidateHandler(f.logger),
		NewBatchHandler(cfg.Batch.Workers, cfg.Batch.MaxSize, f.logger),
	)

	for _, h := range handlers {
		if err := router.Register(h); err != nil {
			f.logger.WithError(err).Errorw("Failed to register handler", "method", h.Method())
			return nil, err
		}
	}

	return router, nil
}
