package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	pprofhttp "net/http/pprof"
	"sync"
	"time"

	"vesagent/internal/config"
)

const (
	debugShutdownTimeout = 3 * time.Second
	debugReadHeaderTO    = 2 * time.Second

	statusPath = "/debug/vesagent/status"
)

// startPprofServer starts the optional debug HTTP endpoint: pprof profiles plus agent status.
// Params: ctx controls lifecycle; cfg provides enabled/listen options; status serves statusPath when non-nil; logger reports runtime events.
// Returns: stop function (idempotent) and startup error.
func startPprofServer(ctx context.Context, cfg config.PprofConfig, status http.Handler, logger *slog.Logger) (func(), error) {
	if !cfg.Enabled {
		return func() {}, nil
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", cfg.Listen, err)
	}

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           debugMux(status),
		ReadHeaderTimeout: debugReadHeaderTO,
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), debugShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("debug server shutdown error", slog.String("error", err.Error()))
			}
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("debug server failed", slog.String("addr", cfg.Listen), slog.String("error", err.Error()))
		}
	}()

	logger.Info("debug server started", slog.String("addr", listener.Addr().String()))
	return stop, nil
}

// debugMux routes pprof handlers and the status endpoint.
// Params: status optional agent status handler.
// Returns: configured mux.
func debugMux(status http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprofhttp.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprofhttp.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprofhttp.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprofhttp.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprofhttp.Trace)
	if status != nil {
		mux.Handle(statusPath, status)
	}
	return mux
}
