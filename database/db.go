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

package database

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/lib/pq" // Postgres driver
	"github.com/tonlage/tonlage/config"
	"github.com/tonlage/tonlage/internal/cache"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}

		cacheInstance, errCache := cache.NewCache()
		if errCache != nil {
			log.Printf("Error creating cache: %v", errCache)
			// Continue without cache instead of failing completely.
		}

		instance = &Datasource{Conn: con, Cache: cacheInstance}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// ConnectDB establishes a database connection with pooling and bootstraps
// the schema.
func ConnectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		log.Printf("database connection error: %v", err)
		return nil, err
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	for _, create := range []func(*sql.DB) error{
		createWorkflowTable,
		createArtistTables,
		createTrackTables,
		createPlayTable,
		createNotifyTriggers,
	} {
		if err := create(db); err != nil {
			return err
		}
	}
	return nil
}

func createWorkflowTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_state (
			workflow_id TEXT PRIMARY KEY,
			init_done BOOLEAN NOT NULL DEFAULT FALSE,
			genre_done BOOLEAN NOT NULL DEFAULT FALSE,
			yt_done BOOLEAN NOT NULL DEFAULT FALSE,
			genre_required BOOLEAN NOT NULL DEFAULT FALSE,
			yt_required BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func createArtistTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS artists (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			genre_status TEXT NOT NULL DEFAULT 'none',
			workflow_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS genres (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS artist_genres (
			artist_id INT NOT NULL REFERENCES artists(id),
			genre_id INT NOT NULL REFERENCES genres(id),
			UNIQUE (artist_id, genre_id)
		)
	`)
	return err
}

func createTrackTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tracks (
			id SERIAL PRIMARY KEY,
			artist_id INT NOT NULL REFERENCES artists(id),
			title TEXT NOT NULL,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			youtube_code TEXT,
			youtube_status TEXT NOT NULL DEFAULT 'none',
			download_status TEXT NOT NULL DEFAULT 'queued',
			file_path TEXT,
			audio_format TEXT,
			download_error TEXT,
			downloaded_at TIMESTAMP,
			workflow_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (artist_id, title)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS albums (
			id SERIAL PRIMARY KEY,
			artist_id INT NOT NULL REFERENCES artists(id),
			title TEXT NOT NULL,
			UNIQUE (artist_id, title)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS album_tracks (
			album_id INT NOT NULL REFERENCES albums(id),
			track_id INT NOT NULL REFERENCES tracks(id),
			UNIQUE (album_id, track_id)
		)
	`)
	return err
}

func createPlayTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS track_plays (
			id SERIAL PRIMARY KEY,
			track_id INT NOT NULL REFERENCES tracks(id),
			played_at TIMESTAMP NOT NULL,
			skipped BOOLEAN NOT NULL DEFAULT FALSE,
			workflow_id TEXT,
			UNIQUE (track_id, played_at)
		)
	`)
	return err
}

// createNotifyTriggers wires the stages together: an insert into artists,
// tracks or track_plays fires pg_notify on the matching channel. The payload
// is a hint only; every consumer re-reads authoritative row state.
func createNotifyTriggers(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE OR REPLACE FUNCTION notify_artist_inserted() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('artists_inserted', json_build_object(
				'id', NEW.id,
				'name', NEW.name,
				'workflow_id', NEW.workflow_id
			)::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS artists_inserted_notify ON artists;
		CREATE TRIGGER artists_inserted_notify
			AFTER INSERT ON artists
			FOR EACH ROW EXECUTE FUNCTION notify_artist_inserted();
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE OR REPLACE FUNCTION notify_track_inserted() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('tracks_inserted', json_build_object(
				'id', NEW.id,
				'title', NEW.title,
				'artist_id', NEW.artist_id,
				'workflow_id', NEW.workflow_id
			)::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS tracks_inserted_notify ON tracks;
		CREATE TRIGGER tracks_inserted_notify
			AFTER INSERT ON tracks
			FOR EACH ROW EXECUTE FUNCTION notify_track_inserted();
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE OR REPLACE FUNCTION notify_track_play() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('track_plays', json_build_object(
				'id', NEW.id,
				'workflow_id', NEW.workflow_id
			)::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS track_plays_notify ON track_plays;
		CREATE TRIGGER track_plays_notify
			AFTER INSERT ON track_plays
			FOR EACH ROW EXECUTE FUNCTION notify_track_play();
	`)
	return err
}
