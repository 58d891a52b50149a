package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	v1 "github.com/Disya123/Books-Translate/api/v1"
	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/importer"
	"github.com/Disya123/Books-Translate/store"
	"github.com/Disya123/Books-Translate/translator"
	"github.com/Disya123/Books-Translate/version"
	"github.com/Disya123/Books-Translate/worker"
	"github.com/gorilla/mux"
)

// StartServer starts the HTTP server
func StartServer(ctx context.Context, store *store.Store, importer *importer.Importer, translator *translator.Client, manager *worker.Manager) (*http.Server, error) {
	addr := config.Opts.Host
	port := config.Opts.Port
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", addr, port),
		Handler: setupHandler(store, importer, translator, manager),
	}

	startHTTPServer(server)

	return server, nil
}

func startHTTPServer(server *http.Server) {
	go func() {
		fmt.Println("Starting HTTP server in:", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			fmt.Println("HTTP server error", err)
			os.Exit(1)
		}
	}()
}

func setupHandler(store *store.Store, importer *importer.Importer, translator *translator.Client, manager *worker.Manager) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware)

	apiHandler := v1.NewHandler(store, importer, translator, manager)
	v1.Server(router, apiHandler)

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(); err != nil {
			http.Error(w, "Database Connection Error", http.StatusInternalServerError)
			return
		}

		w.Write([]byte("OK"))
	}).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(version.GetCurrentVersion()))
	}).Name("version")

	return router
}
