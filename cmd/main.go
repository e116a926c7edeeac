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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tonlage/tonlage"
	"github.com/tonlage/tonlage/config"
	"github.com/tonlage/tonlage/database"
)

// Tonlage represents the CLI application, encapsulating the root Cobra command.
type Tonlage struct {
	cmd *cobra.Command
}

// tonlageInstance holds the runtime service, its datasource and the loaded
// configuration so subcommands can reach all three.
type tonlageInstance struct {
	service *tonlage.Tonlage
	db      database.IDataSource
	cnf     *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads configuration and initializes the service instance before any
// subcommand executes.
func preRun(app *tonlageInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("tonlage.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, db, err := setupTonlage(cnf)
		if err != nil {
			log.Fatal(err)
		}

		app.service = service
		app.db = db
		app.cnf = cnf

		return nil
	}
}

// setupTonlage connects to the data source and builds the service instance
// from the provided configuration.
func setupTonlage(cfg *config.Configuration) (*tonlage.Tonlage, database.IDataSource, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting datasource: %v", err)
	}

	service, err := tonlage.NewTonlage(db)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating tonlage: %v", err)
	}
	return service, db, nil
}

// NewCLI creates the command-line interface for the Tonlage application.
func NewCLI() *Tonlage {
	var configFile string
	b := &tonlageInstance{}

	var rootCmd = &cobra.Command{
		Use:   "tonlage",
		Short: "Media catalogue pipeline",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./tonlage.json", "Configuration file for tonlage")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(backfillCommands(b))
	rootCmd.AddCommand(configCommands())

	return &Tonlage{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during
// execution.
func (w Tonlage) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
