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
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tonlage/tonlage/database"
	"github.com/tonlage/tonlage/internal/downloader"
	"github.com/tonlage/tonlage/model"
)

// AudioFetcher is the piece of the download stage that talks to the
// outside world. downloader.Downloader is the production implementation.
type AudioFetcher interface {
	InLibrary(artist, title string) bool
	Download(ctx context.Context, job *model.DownloadJob) (string, string, error)
}

// DownloadWorkerPool runs a fixed set of workers over the download queue.
// Workers poll rather than listen: a download can take minutes, and the
// claim column already arbitrates which worker owns which track, so
// missing a notification costs at most one poll interval.
type DownloadWorkerPool struct {
	datasource   database.IDataSource
	fetcher      AudioFetcher
	workers      int
	pollInterval time.Duration
	penaltyWait  time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
}

// NewDownloadWorkerPool builds a pool in the idle state. Call Start to
// begin polling.
func NewDownloadWorkerPool(ds database.IDataSource, fetcher AudioFetcher, workers int, pollInterval time.Duration) *DownloadWorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &DownloadWorkerPool{
		datasource:   ds,
		fetcher:      fetcher,
		workers:      workers,
		pollInterval: pollInterval,
		penaltyWait:  2 * time.Second,
	}
}

// Start launches the workers. They run until the context is cancelled or
// Stop is called.
func (p *DownloadWorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Stop cancels the workers and waits for in-flight downloads to finish.
func (p *DownloadWorkerPool) Stop() {
	p.once.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
	})
}

func (p *DownloadWorkerPool) run(ctx context.Context, worker int) {
	defer p.wg.Done()
	log := logrus.WithField("worker", worker)
	log.Info("download worker started")

	for {
		wait := p.pollInterval
		worked, err := p.processNext(ctx)
		if err != nil {
			log.WithError(err).Warn("download attempt failed")
			// Back off briefly so a broken job does not spin the worker.
			wait = p.penaltyWait
		} else if worked {
			// Drain the queue without waiting while there is work.
			wait = 0
		}

		if wait == 0 {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		select {
		case <-ctx.Done():
			log.Info("download worker stopped")
			return
		case <-time.After(wait):
		}
	}
}

// processNext claims and downloads at most one track. It reports whether
// any work was done so the caller can decide how long to sleep.
func (p *DownloadWorkerPool) processNext(ctx context.Context) (bool, error) {
	job, err := p.datasource.NextQueuedDownload(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	won, err := p.datasource.ClaimTrackDownload(ctx, job.TrackID)
	if err != nil {
		return false, err
	}
	if !won {
		// Another worker grabbed it between the poll and the claim. Sleep
		// out the poll interval rather than racing straight back.
		return false, nil
	}

	if p.fetcher.InLibrary(job.Artist, job.Title) {
		logrus.WithFields(logrus.Fields{
			"track_id": job.TrackID,
			"track":    job.Title,
		}).Info("track already in library, skipping download")
		return true, p.datasource.MarkTrackDownloaded(ctx, job.TrackID, "", "")
	}

	path, format, err := p.fetcher.Download(ctx, job)
	if err != nil {
		if markErr := p.datasource.MarkTrackDownloadError(ctx, job.TrackID, err.Error()); markErr != nil {
			logrus.WithError(markErr).WithField("track_id", job.TrackID).Error("failed to record download error")
		}
		return true, err
	}

	if err := p.datasource.MarkTrackDownloaded(ctx, job.TrackID, path, format); err != nil {
		return true, err
	}
	logrus.WithFields(logrus.Fields{
		"track_id": job.TrackID,
		"track":    job.Title,
		"path":     path,
	}).Info("track downloaded")
	return true, nil
}

var _ AudioFetcher = (*downloader.Downloader)(nil)
