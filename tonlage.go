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
	"github.com/tonlage/tonlage/config"
	"github.com/tonlage/tonlage/database"
	"github.com/tonlage/tonlage/internal/cache"
	"github.com/tonlage/tonlage/internal/chat"
	"github.com/tonlage/tonlage/internal/lastfm"
	"github.com/tonlage/tonlage/internal/musicbrainz"
	"github.com/tonlage/tonlage/internal/ytsearch"
)

// Tonlage wires the catalogue datasource to the lookup clients and the
// chat queue. It is the dependency root every stage handler hangs off.
type Tonlage struct {
	queue       *Queue
	datasource  database.IDataSource
	lastfm      *lastfm.Client
	ytsearch    *ytsearch.Client
	musicbrainz *musicbrainz.Client
	chat        *chat.Client
}

// NewTonlage initializes a new instance with the provided datasource,
// fetching the rest of its collaborators from configuration.
func NewTonlage(db database.IDataSource) (*Tonlage, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	lookupCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}

	newQueue := NewQueue(configuration)

	return &Tonlage{
		queue:       newQueue,
		datasource:  db,
		lastfm:      lastfm.NewClient(configuration.LastFm.BaseUrl, configuration.LastFm.ApiKey, lookupCache),
		ytsearch:    ytsearch.NewClient(configuration.Youtube.BaseUrl, configuration.Youtube.ApiKey, lookupCache),
		musicbrainz: musicbrainz.NewClient(configuration.MusicBrainz.BaseUrl, configuration.MusicBrainz.UserAgent),
		chat:        chat.NewClient(configuration.Chat.WebhookUrl, configuration.Chat.Headers),
	}, nil
}
