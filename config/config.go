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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5217"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Port string `json:"port" envconfig:"TONLAGE_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"TONLAGE_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"TONLAGE_REDIS_DNS"`
}

// ChannelsConfig names the Postgres notification channels that stitch the
// stages together. One stage's write fires the channel the next stage
// listens on.
type ChannelsConfig struct {
	Artists string `json:"artists" envconfig:"TONLAGE_CHANNEL_ARTISTS"`
	Tracks  string `json:"tracks" envconfig:"TONLAGE_CHANNEL_TRACKS"`
	Plays   string `json:"plays" envconfig:"TONLAGE_CHANNEL_PLAYS"`
}

type LastFmConfig struct {
	ApiKey  string `json:"api_key" envconfig:"TONLAGE_LASTFM_API_KEY"`
	BaseUrl string `json:"base_url" envconfig:"TONLAGE_LASTFM_BASE_URL"`
}

type YoutubeConfig struct {
	ApiKey  string `json:"api_key" envconfig:"TONLAGE_YOUTUBE_API_KEY"`
	BaseUrl string `json:"base_url" envconfig:"TONLAGE_YOUTUBE_BASE_URL"`
}

type MusicBrainzConfig struct {
	BaseUrl   string `json:"base_url" envconfig:"TONLAGE_MUSICBRAINZ_BASE_URL"`
	UserAgent string `json:"user_agent" envconfig:"TONLAGE_MUSICBRAINZ_USER_AGENT"`
}

// PlayerConfig points at the local streamer whose "now playing" endpoint the
// accountant polls.
type PlayerConfig struct {
	Url             string `json:"url" envconfig:"TONLAGE_PLAYER_URL"`
	PollIntervalSec int    `json:"poll_interval_sec" envconfig:"TONLAGE_PLAYER_POLL_INTERVAL_SEC"`
}

type FetcherConfig struct {
	Workers         int    `json:"workers" envconfig:"TONLAGE_FETCHER_WORKERS"`
	ImportDir       string `json:"import_dir" envconfig:"TONLAGE_FETCHER_IMPORT_DIR"`
	LibraryDir      string `json:"library_dir" envconfig:"TONLAGE_FETCHER_LIBRARY_DIR"`
	AudioFormat     string `json:"audio_format" envconfig:"TONLAGE_FETCHER_AUDIO_FORMAT"`
	PollIntervalSec int    `json:"poll_interval_sec" envconfig:"TONLAGE_FETCHER_POLL_INTERVAL_SEC"`
}

type QueueConfig struct {
	ChatQueue        string `json:"chat_queue" envconfig:"TONLAGE_QUEUE_CHAT_QUEUE"`
	MaxRetryAttempts int    `json:"max_retry_attempts" envconfig:"TONLAGE_QUEUE_MAX_RETRY_ATTEMPTS"`
}

type ChatConfig struct {
	WebhookUrl string            `json:"webhook_url" envconfig:"TONLAGE_CHAT_WEBHOOK_URL"`
	Headers    map[string]string `json:"headers"`
}

type Configuration struct {
	ProjectName string            `json:"project_name" envconfig:"TONLAGE_PROJECT_NAME"`
	Server      ServerConfig      `json:"server"`
	DataSource  DataSourceConfig  `json:"data_source"`
	Redis       RedisConfig       `json:"redis"`
	Channels    ChannelsConfig    `json:"channels"`
	LastFm      LastFmConfig      `json:"lastfm"`
	Youtube     YoutubeConfig     `json:"youtube"`
	MusicBrainz MusicBrainzConfig `json:"musicbrainz"`
	Player      PlayerConfig      `json:"player"`
	Fetcher     FetcherConfig     `json:"fetcher"`
	Queue       QueueConfig       `json:"queue"`
	Chat        ChatConfig        `json:"chat"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("tonlage", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called tonlage.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Tonlage"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Channels.Artists == "" {
		cnf.Channels.Artists = "artists_inserted"
	}
	if cnf.Channels.Tracks == "" {
		cnf.Channels.Tracks = "tracks_inserted"
	}
	if cnf.Channels.Plays == "" {
		cnf.Channels.Plays = "track_plays"
	}

	if cnf.LastFm.BaseUrl == "" {
		cnf.LastFm.BaseUrl = "http://ws.audioscrobbler.com/2.0"
	}
	if cnf.Youtube.BaseUrl == "" {
		cnf.Youtube.BaseUrl = "https://www.googleapis.com/youtube/v3"
	}
	if cnf.MusicBrainz.BaseUrl == "" {
		cnf.MusicBrainz.BaseUrl = "https://musicbrainz.org/ws/2"
	}
	if cnf.MusicBrainz.UserAgent == "" {
		cnf.MusicBrainz.UserAgent = "Tonlage/1.0"
	}

	if cnf.Player.PollIntervalSec <= 0 {
		cnf.Player.PollIntervalSec = 2
	}

	if cnf.Fetcher.Workers <= 0 {
		cnf.Fetcher.Workers = 4
	}
	if cnf.Fetcher.ImportDir == "" {
		cnf.Fetcher.ImportDir = "/import"
	}
	if cnf.Fetcher.LibraryDir == "" {
		cnf.Fetcher.LibraryDir = "/music"
	}
	if cnf.Fetcher.AudioFormat == "" {
		cnf.Fetcher.AudioFormat = "m4a"
	}
	if cnf.Fetcher.PollIntervalSec <= 0 {
		cnf.Fetcher.PollIntervalSec = 5
	}

	if cnf.Queue.ChatQueue == "" {
		cnf.Queue.ChatQueue = "chat_posts"
	}
	if cnf.Queue.MaxRetryAttempts <= 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
