/*
Copyright 2024 Tonlage Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tonlage/tonlage"
	"github.com/tonlage/tonlage/api"
	"github.com/tonlage/tonlage/config"
	"github.com/tonlage/tonlage/internal/downloader"
	"github.com/tonlage/tonlage/internal/mediaserver"
	pg_listener "github.com/tonlage/tonlage/internal/pg-listener"
)

func initializeRouter(b *tonlageInstance) *gin.Engine {
	return api.NewAPI(b.service).Router()
}

// startListeners subscribes the stage handlers to their notification
// channels. Each subscription holds its own connection and reconnects on its
// own; the goroutines exit when ctx is cancelled.
func startListeners(ctx context.Context, b *tonlageInstance) {
	relay := pg_listener.NewRelay(b.cnf.DataSource.Dns)

	go relay.Subscribe(ctx, b.cnf.Channels.Artists, b.service.HandleArtistInserted)
	go relay.Subscribe(ctx, b.cnf.Channels.Tracks, b.service.HandleTrackInserted)
	go relay.Subscribe(ctx, b.cnf.Channels.Plays, b.service.HandlePlayRecorded)
}

func startDownloadPool(ctx context.Context, b *tonlageInstance) *tonlage.DownloadWorkerPool {
	fetcher := downloader.New(b.cnf.Fetcher.ImportDir, b.cnf.Fetcher.LibraryDir, b.cnf.Fetcher.AudioFormat)
	pool := tonlage.NewDownloadWorkerPool(
		b.db,
		fetcher,
		b.cnf.Fetcher.Workers,
		time.Duration(b.cnf.Fetcher.PollIntervalSec)*time.Second,
	)
	pool.Start(ctx)
	return pool
}

func startAccountant(ctx context.Context, b *tonlageInstance) {
	player := mediaserver.NewClient(b.cnf.Player.Url)
	accountant := tonlage.NewAccountant(
		b.service,
		player,
		time.Duration(b.cnf.Player.PollIntervalSec)*time.Second,
	)
	go accountant.Run(ctx)
}

func startServer(router *gin.Engine, cfg config.ServerConfig) error {
	log.Printf("Starting server on http://localhost:%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}

/*
serverCommands returns the Cobra command responsible for starting the Tonlage
server. It wires the notification listeners, the download worker pool and the
playback accountant before launching the HTTP API.
*/
func serverCommands(b *tonlageInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start tonlage server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			router := initializeRouter(b)

			startListeners(ctx, b)
			pool := startDownloadPool(ctx, b)
			defer pool.Stop()
			startAccountant(ctx, b)

			if err := startServer(router, b.cnf.Server); err != nil {
				log.Fatal(err)
			}
		},
	}

	return cmd
}
