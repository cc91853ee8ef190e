package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/tcriess/lightspeed-rooms/auth"
	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/persistence"
	"github.com/tcriess/lightspeed-rooms/room"
	"github.com/tcriess/lightspeed-rooms/storage"
)

// A very simple CLI tool for the administration of lightspeed-rooms rooms and users.

func main() {
	a := &admin{out: os.Stdout, in: os.Stdin}
	var configPath string
	flagSet := config.GetFlagSet()

	rootCmd := a.rootCmd()
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file or directory")
	rootCmd.PersistentFlags().AddFlagSet(flagSet)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		globalConfig, err := config.ReadConfiguration(configPath, flagSet)
		if err != nil {
			return err
		}
		globals.AppLogger.SetLevel(hclog.LevelFromString(globalConfig.LogLevel))

		persister, err := persistence.NewGormPersister(globalConfig)
		if err != nil {
			return err
		}
		blobs, err := storage.NewLocalStore(globalConfig.StorageConfig)
		if err != nil {
			persister.Close()
			return err
		}
		a.persister = persister
		a.rooms = room.NewService(persister, blobs)
		a.accounts = auth.NewService(persister, globalConfig)
		return nil
	}

	err := rootCmd.Execute()
	if a.persister != nil {
		a.persister.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
