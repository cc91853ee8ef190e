package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"github.com/tcriess/lightspeed-rooms/auth"
	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/persistence"
	"github.com/tcriess/lightspeed-rooms/room"
	"github.com/tcriess/lightspeed-rooms/storage"
	"github.com/tcriess/lightspeed-rooms/web"
	"github.com/tcriess/lightspeed-rooms/ws"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath = pflag.StringP("config", "c", "", "path to config file or directory")
)

func main() {
	flagSet := config.GetFlagSet()
	pflag.CommandLine.AddFlagSet(flagSet)
	pflag.Parse()

	globalConfig, err := config.ReadConfiguration(*configPath, flagSet)
	if err != nil {
		panic(err)
	}
	globals.AppLogger.SetLevel(hclog.LevelFromString(globalConfig.LogLevel))

	persister, err := persistence.NewGormPersister(globalConfig)
	if err != nil {
		panic(err)
	}
	defer persister.Close()

	sessions, err := auth.OpenSessionStore(globalConfig.SessionConfig)
	if err != nil {
		panic(err)
	}
	defer sessions.Close()

	blobs, err := storage.NewLocalStore(globalConfig.StorageConfig)
	if err != nil {
		panic(err)
	}
	if globalConfig.StorageConfig.SweepSchedule != "" {
		sweeper := storage.NewSweeper(blobs, persister, globalConfig.StorageConfig.SweepGrace)
		cronRunner, err := sweeper.Schedule(globalConfig.StorageConfig.SweepSchedule)
		if err != nil {
			panic(err)
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	server, err := web.NewServer(globalConfig, room.NewService(persister, blobs), auth.NewService(persister, globalConfig), sessions, hub, blobs.Dir())
	if err != nil {
		panic(err)
	}
	httpServer := &http.Server{
		Addr:              globalConfig.HTTPConfig.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		globals.AppLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			globals.AppLogger.Error("could not shut down http server", "error", err)
		}
	}()

	globals.AppLogger.Info("listening", "addr", httpServer.Addr)
	// start HTTP server
	if globalConfig.HTTPConfig.SSLCert != "" && globalConfig.HTTPConfig.SSLKey != "" {
		err = httpServer.ListenAndServeTLS(globalConfig.HTTPConfig.SSLCert, globalConfig.HTTPConfig.SSLKey)
	} else {
		err = httpServer.ListenAndServe()
	}
	if !errors.Is(err, http.ErrServerClosed) {
		globals.AppLogger.Error("stopped listening", "error", err)
	}
}
