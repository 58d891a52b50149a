package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/importer"
	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/server"
	"github.com/Disya123/Books-Translate/storage"
	"github.com/Disya123/Books-Translate/store"
	"github.com/Disya123/Books-Translate/store/db"
	"github.com/Disya123/Books-Translate/translator"
	"github.com/Disya123/Books-Translate/version"
	"github.com/Disya123/Books-Translate/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	greetingBanner = `
██████   ██████   ██████  ██   ██ ███████
██   ██ ██    ██ ██    ██ ██  ██  ██
██████  ██    ██ ██    ██ █████   ███████
██   ██ ██    ██ ██    ██ ██  ██       ██
██████   ██████   ██████  ██   ██ ███████
`
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "books-translate",
		Short: "Books-Translate is a web novel import and translation service",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := config.GetConfig(); err != nil {
				fmt.Println("Error loading config:", err)
				os.Exit(1)
			}
			if configFile != "" {
				if _, err := config.ParseFile(configFile); err != nil {
					fmt.Println("Error parsing config file:", err)
					os.Exit(1)
				}
			}

			log.Logger = log.NewLogger()
			defer log.Logger.Sync()

			fmt.Print(greetingBanner, "\n")
			log.Info("Starting Books-Translate",
				zap.String("version", version.GetCurrentVersion()),
				zap.String("data", config.Opts.Data))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			database, err := db.NewDB(config.Opts.DSN)
			if err != nil {
				log.Error("Error connecting to database", zap.Error(err))
				return
			}
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				log.Error("Error migrating database", zap.Error(err))
				return
			}

			s := store.NewStore(database.DB)
			if err := s.Ping(); err != nil {
				log.Error("Error pinging database", zap.Error(err))
				return
			}

			// Items stuck in processing from a previous run are retried.
			reset, err := s.ResetStaleQueueItems()
			if err != nil {
				log.Error("Error resetting stale queue items", zap.Error(err))
				return
			}
			if reset > 0 {
				log.Info("Requeued stale translation items", zap.Int64("count", reset))
			}

			localStorage := storage.NewLocalStorage()
			bookImporter := importer.New(s, localStorage)
			translationClient := translator.New(s, translator.FromOptions(config.Opts))
			manager := worker.NewManager(s, translationClient, nil, nil)

			httpServer, err := server.StartServer(ctx, s, bookImporter, translationClient, manager)
			if err != nil {
				log.Error("Error starting server", zap.Error(err))
				return
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			log.Info("Shutting down")
			manager.Shutdown()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down HTTP server", zap.Error(err))
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to the config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
