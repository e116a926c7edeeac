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

	"github.com/spf13/cobra"
)

// backfillCommands groups the catch-up commands that re-enqueue catalogue
// rows whose enrichment was missed, usually after downtime: notifications
// that fired while nothing was listening are gone for good.
func backfillCommands(b *tonlageInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "re-run enrichment for rows the listeners missed",
	}

	cmd.AddCommand(backfillGenresCommands(b))
	cmd.AddCommand(backfillVideosCommands(b))

	return cmd
}

func backfillGenresCommands(b *tonlageInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genres",
		Short: "fetch genres for artists without any",
		Run: func(cmd *cobra.Command, args []string) {
			processed, err := b.service.BackfillGenres(context.Background())
			if err != nil {
				log.Fatalf("genre backfill failed: %v", err)
			}
			log.Printf("genre backfill complete, %d artists processed", processed)
		},
	}
	return cmd
}

func backfillVideosCommands(b *tonlageInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "resolve video codes for tracks without one",
		Run: func(cmd *cobra.Command, args []string) {
			processed, err := b.service.BackfillYoutube(context.Background())
			if err != nil {
				log.Fatalf("video backfill failed: %v", err)
			}
			log.Printf("video backfill complete, %d tracks processed", processed)
		},
	}
	return cmd
}
