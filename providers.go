package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MadAppGang/httplog"
	lzap "github.com/MadAppGang/httplog/zap"
	ghandlers "github.com/gorilla/handlers"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/config"
	"github.com/0xzenith/zenith-go/handlers"
	"github.com/0xzenith/zenith-go/txwatch"
)

func NewHttpServer(lc fx.Lifecycle, cfg *config.Config, mux *http.ServeMux, log *zap.Logger) *http.Server {
	logware := httplog.LoggerWithConfig(httplog.LoggerConfig{
		Formatter: lzap.ZapLogger(log, zapcore.InfoLevel, ""),
	})
	root := ghandlers.RecoveryHandler()(
		ghandlers.CORS(
			ghandlers.AllowedOrigins([]string{"*"}),
			ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
			ghandlers.AllowedHeaders([]string{"authorization", "content-type"}),
		)(logware(mux)),
	)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      root,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			fmt.Println("Starting HTTP server at", srv.Addr)
			go srv.Serve(ln)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}

func NewServeMux(routers []handlers.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	for _, router := range routers {
		router.ServeHttp(mux)
	}
	return mux
}

func NewTxTracker(cfg *config.Config, backend chain.Backend, log *zap.Logger) *txwatch.Tracker {
	return txwatch.New(backend, txwatch.Config{
		Depth:        cfg.ConfirmationDepth,
		Wait:         cfg.ConfirmationWait,
		PollInterval: cfg.PollInterval,
	}, log)
}
