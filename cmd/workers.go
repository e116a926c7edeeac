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
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/tonlage/tonlage/config"
	redis_db "github.com/tonlage/tonlage/internal/redis-db"

	"github.com/hibiken/asynq"
)

func initializeQueues(conf *config.Configuration) map[string]int {
	queues := make(map[string]int)
	queues[conf.Queue.ChatQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *tonlageInstance, mux *asynq.ServeMux) {
	mux.HandleFunc(b.cnf.Queue.ChatQueue, b.service.ProcessChatPost)
}

// workerCommands defines the "workers" command to start worker processes.
// The workers deliver queued chat announcements, retrying the ones whose
// enrichment has not finished yet.
func workerCommands(b *tonlageInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start tonlage workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues(conf)

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
