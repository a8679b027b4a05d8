package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/mowind/multiaddress-go/internal/server"
	"github.com/spf13/cobra"
)

// shutdownTimeout 优雅关闭的最长等待时间
const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve address conversions over HTTP JSON-RPC",
		Long: `serve starts an HTTP JSON-RPC 2.0 server with the methods
address_toEvm, address_fromEvm, address_convert, address_validate and
address_batch on POST /, plus GET /health and GET /ready.

The server runs until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(ctx context.Context) error {
	// 打印配置摘要
	a.logger.Infow("Starting multiaddress server", "config", a.cfg.String(), "version", Version)

	srv, err := server.NewBuilder(a.cfg).WithLogger(a.logger).Build()
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	// 等待中断信号
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	a.logger.Infow("Shutting down", "reason", context.Cause(ctx).Error())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		a.logger.WithError(err).Errorw("Error during shutdown")
		return err
	}

	a.logger.Infow("Server shutdown complete")
	return nil
}
