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

package tonlage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/tonlage/tonlage/config"
	redis_db "github.com/tonlage/tonlage/internal/redis-db"
)

// Queue carries chat announcements out of the play pipeline. Delivery is
// retried by asynq, so a flaky webhook never blocks the accountant.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// ChatPostPayload is the task body for one chat announcement. The text is
// rendered at delivery time so the announcement can wait for enrichment to
// finish.
type ChatPostPayload struct {
	PlayID     int64  `json:"play_id"`
	WorkflowID string `json:"workflow_id"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// queueChatPost enqueues one announcement. The task ID is derived from the
// play so a deferred workflow that completes twice cannot double-post.
func (q *Queue) queueChatPost(payload ChatPostPayload) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("chat_%d", payload.PlayID)),
		asynq.Queue(cfg.Queue.ChatQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.ChatQueue, rawPayload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		// A duplicate task ID means the announcement is already queued.
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		log.Println(err, info)
		return err
	}
	return nil
}
