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

// Package downloader pulls audio streams for claimed tracks into the
// import directory.
package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
	"github.com/pkg/errors"
	"github.com/tonlage/tonlage/model"
)

type Downloader struct {
	client          ytdl.Client
	importDir       string
	libraryDir      string
	preferredFormat string
}

func New(importDir, libraryDir, preferredFormat string) *Downloader {
	return &Downloader{
		client:          ytdl.Client{},
		importDir:       importDir,
		libraryDir:      libraryDir,
		preferredFormat: preferredFormat,
	}
}

// InLibrary reports whether the track already exists under the library
// directory, in which case downloading again is wasted work.
func (d *Downloader) InLibrary(artist, title string) bool {
	if d.libraryDir == "" {
		return false
	}

	artistDir := filepath.Join(d.libraryDir, model.SanitizePathComponent(artist))
	entries, err := os.ReadDir(artistDir)
	if err != nil {
		return false
	}

	want := strings.ToLower(model.SanitizePathComponent(title))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name()), want) {
			return true
		}
	}
	return false
}

// Download fetches the best audio-only stream for the job's video code and
// writes it to <importDir>/<artist>/<trackID> - <title>.<ext>. It returns
// the final path and the audio container extension.
func (d *Downloader) Download(ctx context.Context, job *model.DownloadJob) (string, string, error) {
	video, err := d.client.GetVideoContext(ctx, job.YoutubeCode)
	if err != nil {
		return "", "", errors.Wrapf(err, "fetching video %s", job.YoutubeCode)
	}

	format, err := d.pickAudioFormat(video)
	if err != nil {
		return "", "", err
	}

	stream, _, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", "", errors.Wrapf(err, "opening stream for video %s", job.YoutubeCode)
	}
	defer stream.Close()

	ext := extensionFor(format.MimeType)
	artistDir := filepath.Join(d.importDir, model.SanitizePathComponent(job.Artist))
	if err := os.MkdirAll(artistDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "creating artist directory")
	}

	fileName := fmt.Sprintf("%d - %s.%s", job.TrackID, model.SanitizePathComponent(job.Title), ext)
	outputPath := filepath.Join(artistDir, fileName)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", "", errors.Wrap(err, "creating output file")
	}
	defer file.Close()

	if _, err := io.Copy(file, stream); err != nil {
		os.Remove(outputPath)
		return "", "", errors.Wrapf(err, "downloading video %s", job.YoutubeCode)
	}
	return outputPath, ext, nil
}

// pickAudioFormat returns the highest-bitrate audio-only format, favouring
// the preferred container when one matches.
func (d *Downloader) pickAudioFormat(video *ytdl.Video) (*ytdl.Format, error) {
	var audio []*ytdl.Format
	for i := range video.Formats {
		f := &video.Formats[i]
		if strings.HasPrefix(f.MimeType, "audio/") {
			audio = append(audio, f)
		}
	}
	if len(audio) == 0 {
		return nil, errors.Errorf("no audio formats for video %s", video.ID)
	}

	sort.Slice(audio, func(i, j int) bool {
		return audio[i].Bitrate > audio[j].Bitrate
	})

	if container := containerFor(d.preferredFormat); container != "" {
		for _, f := range audio {
			if strings.Contains(f.MimeType, container) {
				return f, nil
			}
		}
	}
	return audio[0], nil
}

// containerFor maps an audio extension to the MIME container it lives in.
func containerFor(format string) string {
	switch format {
	case "m4a", "mp4":
		return "mp4"
	case "webm", "opus":
		return "webm"
	default:
		return ""
	}
}

func extensionFor(mimeType string) string {
	if strings.Contains(mimeType, "mp4") {
		return "m4a"
	}
	if strings.Contains(mimeType, "webm") {
		return "webm"
	}
	return "audio"
}
