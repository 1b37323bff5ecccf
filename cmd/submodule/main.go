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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/internal/config"
	"github.com/nihility-go/nihility/rpc"
	"github.com/nihility-go/nihility/wire"
)

var corePublicKeyPath string

var rootCmd = &cobra.Command{
	Use:   "nihility-submodule",
	Short: "Submodule client for the core RPC fabric",
	RunE:  runSubmodule,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&corePublicKeyPath, "core-public-key", "core_id_rsa.pub", "path to the core's public key, distributed out-of-band before first registration")
}

func runSubmodule(cmd *cobra.Command, args []string) error {
	cfg := config.MustLoad()
	if cfg.Submodule == nil || cfg.Submodule.Name == "" {
		return fmt.Errorf("submodule: NIHILITY_SUBMODULE_NAME or submodule.name in config is required")
	}

	store := auth.Default
	if err := store.InitSubmodule(cfg.Submodule.Name, corePublicKeyPath); err != nil {
		return fmt.Errorf("submodule: init key store: %w", err)
	}

	client := rpc.NewClient(cfg.Submodule.CoreAddr, store)
	client.Connect()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	info := wire.SubmoduleInfo{
		DefaultInstruct: []string{},
		ConnParams: wire.ConnParams{
			ConnectionType: wire.ConnectionHTTP,
			ClientType:     wire.ClientBoth,
		},
	}
	resp, err := client.Register(ctx, info)
	cancel()
	if err != nil {
		return fmt.Errorf("submodule: register: %w", err)
	}
	log.Printf("submodule: registered as %q, response code %v", cfg.Submodule.Name, resp.Code)

	waitForShutdown(client, info)
	return nil
}

func waitForShutdown(client *rpc.Client, info wire.SubmoduleInfo) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.Offline(ctx, info); err != nil {
		log.Printf("submodule: offline notification failed: %v", err)
	}
}
