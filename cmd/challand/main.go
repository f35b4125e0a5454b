package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"challanup-backend/lib/challanstore"
	"challanup-backend/lib/configutil"
	"challanup-backend/lib/scrapers/erp"
	"challanup-backend/lib/telemetry"
	"challanup-backend/lib/util/serviceutil"
	"challanup-backend/services/challan"
)

type Config struct {
	Port      int         `json:"port"`
	Erp       erp.Options `json:"erp"`
	HistoryDb string      `json:"history_db"`
}

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.SetupFromEnv(ctx, "challand")
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	var store *challanstore.Store
	if cfg.HistoryDb != "" {
		store, err = challanstore.Open(cfg.HistoryDb)
		if err != nil {
			serviceutil.Fatal("failed to open history db", err)
		}
		defer store.Close()
	}

	service := challan.NewService(cfg.Erp, store)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: newRouter(service),
	}

	go func() {
		slog.Info("listening...", "port", cfg.Port)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serviceutil.Fatal("http server failed", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = httpServer.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}
