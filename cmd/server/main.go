package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parley/chat-app/internal/chat"
	"github.com/parley/chat-app/internal/config"
	"github.com/parley/chat-app/internal/metrics"
	"github.com/parley/chat-app/internal/moderation"
	"github.com/parley/chat-app/internal/server"
	"github.com/parley/chat-app/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	users := user.NewStore()
	messages := chat.NewStore()
	sched := moderation.NewScheduler()

	mod := moderation.New(moderation.Config{
		MessageQuota:    cfg.Moderation.MessageQuota,
		ThrottleFor:     cfg.Moderation.ThrottleDuration,
		ReportThreshold: cfg.Moderation.ReportThreshold,
		BanFor:          cfg.Moderation.BanDuration,
		MessageTTL:      cfg.Moderation.MessageLifetime,
		SweepInterval:   cfg.Moderation.SweepInterval,
	}, sched, messages)
	mod.StartSweeper()

	srv := server.New(server.Config{
		Addr:          cfg.Server.Addr(),
		ReadChunkSize: server.DefaultConfig().ReadChunkSize,
		CatchUpCount:  cfg.Moderation.CatchUpCount,
	}, users, messages, mod)

	log.Printf("Parley chat server starting")
	log.Printf("  listen_addr:      %s", cfg.Server.Addr())
	log.Printf("  metrics_addr:     %s", cfg.Server.MetricsAddr)
	log.Printf("  message_lifetime: %s", cfg.Moderation.MessageLifetime)
	log.Printf("  message_quota:    %d", cfg.Moderation.MessageQuota)
	log.Printf("  throttle:         %s", cfg.Moderation.ThrottleDuration)
	log.Printf("  report_threshold: %d", cfg.Moderation.ReportThreshold)
	log.Printf("  ban:              %s", cfg.Moderation.BanDuration)
	log.Printf("  catchup_count:    %d", cfg.Moderation.CatchUpCount)

	go serveMetrics(cfg.Server.MetricsAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		mod.Stop()
		sched.Stop()
		srv.Shutdown()
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// serveMetrics exposes /metrics and /health on a side HTTP listener.
func serveMetrics(addr string) {
	startedAt := time.Now()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		resp := struct {
			Status string `json:"status"`
			Uptime string `json:"uptime"`
		}{
			Status: "ok",
			Uptime: time.Since(startedAt).Round(time.Second).String(),
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	log.Printf("metrics: listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics: server error: %v", err)
	}
}
