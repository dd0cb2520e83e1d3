package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legal-assistant/internal/app"
	"legal-assistant/internal/httputil"
	"legal-assistant/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.BuildClient(os.Stdout)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("ui using api", "url", deps.Config.APIURL, "timeout", deps.Config.ClientTimeout)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.UIPort),
		Handler:           newRouter(deps.Log, deps.API, ui.NewSessions(deps.Config.SessionTTL)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httputil.ListenAndServe(ctx, deps.Log, srv, "ui"); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newRouter(log *slog.Logger, api ui.API, sessions *ui.Sessions) http.Handler {
	r := httputil.NewRouter(log)
	ui.NewServer(ui.NewController(api, log), sessions, log).Routes(r)
	r.Get("/healthz", httputil.HealthHandler(log))
	return r
}
