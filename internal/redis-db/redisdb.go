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

package redis_db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis holds a universal client so single-instance and clustered setups
// share one code path.
type Redis struct {
	addresses []string
	client    redis.UniversalClient
}

// ParseRedisURL parses a Redis URL into client options. Docker-style
// addresses ("redis:6379") are accepted as-is.
func ParseRedisURL(rawURL string) (*redis.Options, error) {
	if rawURL == "" {
		return nil, errors.New("redis URL is empty")
	}

	if strings.Count(rawURL, ":") == 1 && !strings.Contains(rawURL, "@") && !strings.Contains(rawURL, "//") {
		return &redis.Options{Addr: rawURL}, nil
	}

	if !strings.Contains(rawURL, "://") {
		rawURL = fmt.Sprintf("redis://%s", rawURL)
	}

	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	return opts, nil
}

// NewRedisClient connects a universal client to the given addresses.
func NewRedisClient(addresses []string) (*Redis, error) {
	if len(addresses) == 0 {
		return nil, errors.New("redis addresses list is empty")
	}

	if len(addresses) == 1 {
		opts, err := ParseRedisURL(addresses[0])
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		return &Redis{addresses: addresses, client: client}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: addresses})
	return &Redis{addresses: addresses, client: client}, nil
}

// Client exposes the underlying universal client.
func (r *Redis) Client() redis.UniversalClient {
	return r.client
}
