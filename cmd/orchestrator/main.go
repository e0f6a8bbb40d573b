// Copyright 2025 BrainSAIT
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brainsait/platform/orchestrator/audit"
	"brainsait/platform/orchestrator/config"
	"brainsait/platform/orchestrator/dispatch"
	"brainsait/platform/orchestrator/provider"
	"brainsait/platform/orchestrator/server"
	"brainsait/platform/orchestrator/sync"
	"brainsait/platform/shared/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	log := logger.New("orchestrator")

	settingsPath := os.Getenv("BRAINSAIT_SETTINGS_FILE")
	if settingsPath == "" {
		settingsPath = "settings.yaml"
	}
	fileSettings, err := config.Load(settingsPath)
	if err != nil {
		log.Error("", "failed to load settings file", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	snap := config.Resolve(config.FromEnv(), fileSettings)
	snapshot := func() config.Snapshot { return snap }

	auditLog := audit.NewLog(snap.AuditCapacity)

	store, err := audit.NewStore(snap.DatabaseURL, log)
	if err != nil {
		log.Error("", "failed to start audit mirror", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
		log.Info("", "audit mirror enabled", nil)
	}

	metrics := dispatch.NewMetrics(prometheus.DefaultRegisterer)

	submitters := make(map[sync.Target]sync.Submitter)
	if snap.Jira.Site != "" && snap.Jira.Token != "" {
		submitters[sync.TargetJira] = sync.NewJiraClient(snap.Jira)
	}
	if snap.Confluence.Site != "" && snap.Confluence.Token != "" {
		submitters[sync.TargetConfluence] = sync.NewConfluenceClient(snap.Confluence)
	}
	worker := sync.NewWorker(submitters, logger.New("sync"),
		sync.WithOutcomeHook(metrics.SyncOutcome))
	defer worker.Close()

	limiter, err := server.NewRateLimiter(snap.RedisURL, snap.RateLimitPerMinute, log)
	if err != nil {
		log.Error("", "failed to start rate limiter", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if limiter != nil {
		defer limiter.Close()
	}

	dispatcher := dispatch.New(snapshot, provider.NewRegistry(), auditLog,
		dispatch.WithMirror(store),
		dispatch.WithSyncer(worker),
		dispatch.WithMetrics(metrics),
	)

	srv := server.New(snapshot, dispatcher, auditLog, server.WithRateLimiter(limiter))
	httpServer := &http.Server{
		Addr:         snap.ListenAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("", "orchestrator listening", map[string]interface{}{
			"addr": snap.ListenAddr,
			"mode": string(snap.Mode),
		})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("", "server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("", "shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("", "shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
