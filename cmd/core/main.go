// Copyright (C) 2025 nihility-go
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/health"
	"github.com/nihility-go/nihility/internal/config"
	"github.com/nihility-go/nihility/internal/metrics"
	"github.com/nihility-go/nihility/registry"
	"github.com/nihility-go/nihility/rpc"
)

var rootCmd = &cobra.Command{
	Use:   "nihility-core",
	Short: "Core server for the submodule RPC fabric",
	RunE:  runCore,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func runCore(cmd *cobra.Command, args []string) error {
	cfg := config.MustLoad()

	store := auth.Default
	if err := store.InitCore(cfg.KeyStore.Directory); err != nil {
		return fmt.Errorf("core: init key store: %w", err)
	}

	handlers := rpc.NewHandlers(store)
	checker := health.NewHealthChecker(5 * time.Second)
	checker.RegisterCheck("key_store", health.KeyStoreHealthCheck(func() error {
		if store.PrivateKey() == nil {
			return fmt.Errorf("core key pair not loaded")
		}
		return nil
	}))

	if cfg.Registry != nil && cfg.Registry.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		audit, err := registry.NewStore(ctx, cfg.Registry.DSN)
		cancel()
		if err != nil {
			return fmt.Errorf("core: connect audit store: %w", err)
		}
		if err := audit.EnsureSchema(context.Background()); err != nil {
			return fmt.Errorf("core: ensure audit schema: %w", err)
		}
		defer audit.Close()
		handlers.SetAudit(audit)
		checker.RegisterCheck("submodule_liveness", health.SubmoduleLivenessCheck(2*time.Minute, func() time.Duration {
			age, err := audit.LastHeartbeatAge(context.Background())
			if err != nil || age < 0 {
				return -1
			}
			return time.Duration(age * float64(time.Second))
		}))
		checker.RegisterCheck("registry_db", health.DatabaseHealthCheck(audit.Ping))
		log.Printf("core: audit trail enabled")
	}

	server := &http.Server{
		Addr:    cfg.Core.ListenAddr,
		Handler: handlers.Mux(),
	}

	if cfg.Health.Enabled {
		go serveHealth(cfg, checker)
	}
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg)
	}

	go func() {
		log.Printf("core: listening on %s", cfg.Core.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("core: server failed: %v", err)
		}
	}()

	waitForShutdown(server)
	return nil
}

func serveHealth(cfg *config.Config, checker *health.HealthChecker) {
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Health.Path, func(w http.ResponseWriter, r *http.Request) {
		status := checker.GetOverallStatus(r.Context())
		if status != health.StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		fmt.Fprintf(w, `{"status":"%s"}`, status)
	})
	log.Printf("core: health endpoint on %s%s", cfg.Health.Addr, cfg.Health.Path)
	if err := http.ListenAndServe(cfg.Health.Addr, mux); err != nil {
		log.Printf("core: health server stopped: %v", err)
	}
}

func serveMetrics(cfg *config.Config) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	log.Printf("core: metrics endpoint on %s%s", cfg.Metrics.Addr, cfg.Metrics.Path)
	if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
		log.Printf("core: metrics server stopped: %v", err)
	}
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("core: graceful shutdown failed: %v", err)
	}
}
