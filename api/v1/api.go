package v1

import (
	"net/http"

	"github.com/Disya123/Books-Translate/importer"
	"github.com/Disya123/Books-Translate/store"
	"github.com/Disya123/Books-Translate/translator"
	"github.com/Disya123/Books-Translate/worker"
	"github.com/gorilla/mux"
)

type Handler struct {
	store      *store.Store
	importer   *importer.Importer
	translator *translator.Client
	manager    *worker.Manager
}

// NewHandler is a constructor for the v1.Handler
func NewHandler(store *store.Store, importer *importer.Importer, translator *translator.Client, manager *worker.Manager) *Handler {
	return &Handler{
		store:      store,
		importer:   importer,
		translator: translator,
		manager:    manager,
	}
}

func Server(router *mux.Router, handler *Handler) {
	sr := router.PathPrefix("/api/v1").Subrouter()

	sr.HandleFunc("/novels", handler.importNovel).Methods(http.MethodPost)
	sr.HandleFunc("/novels", handler.listNovels).Methods(http.MethodGet)
	sr.HandleFunc("/novel/{id:[0-9]+}", handler.getNovel).Methods(http.MethodGet)
	sr.HandleFunc("/novel/{id:[0-9]+}", handler.updateNovel).Methods(http.MethodPut)
	sr.HandleFunc("/novel/{id:[0-9]+}", handler.deleteNovel).Methods(http.MethodDelete)
	sr.HandleFunc("/novel/{id:[0-9]+}/chapters", handler.listChapters).Methods(http.MethodGet)
	sr.HandleFunc("/novel/{id:[0-9]+}/chapter/{number:[0-9]+}", handler.getChapterByNumber).Methods(http.MethodGet)
	sr.HandleFunc("/novel/{id:[0-9]+}/bookmark", handler.getBookmark).Methods(http.MethodGet)
	sr.HandleFunc("/novel/{id:[0-9]+}/bookmark", handler.setBookmark).Methods(http.MethodPost)
	sr.HandleFunc("/novel/{id:[0-9]+}/bookmark", handler.removeBookmark).Methods(http.MethodDelete)
	sr.HandleFunc("/novel/{id:[0-9]+}/images", handler.listImages).Methods(http.MethodGet)
	sr.HandleFunc("/novel/{id:[0-9]+}/translated", handler.translatedChapters).Methods(http.MethodGet)
	sr.HandleFunc("/covers/{id:[0-9]+}", handler.getCover).Methods(http.MethodGet)

	sr.HandleFunc("/chapter/{id:[0-9]+}", handler.getChapter).Methods(http.MethodGet)
	sr.HandleFunc("/chapter/{id:[0-9]+}", handler.updateChapter).Methods(http.MethodPut)
	sr.HandleFunc("/chapter/{id:[0-9]+}", handler.deleteChapter).Methods(http.MethodDelete)
	sr.HandleFunc("/chapter/{id:[0-9]+}/translate", handler.translateChapter).Methods(http.MethodPost)

	sr.HandleFunc("/translations/cache", handler.clearTranslationCache).Methods(http.MethodDelete)

	sr.HandleFunc("/batch/start", handler.startBatch).Methods(http.MethodPost)
	sr.HandleFunc("/batch/pause", handler.pauseBatch).Methods(http.MethodPost)
	sr.HandleFunc("/batch/resume", handler.resumeBatch).Methods(http.MethodPost)
	sr.HandleFunc("/batch/stop", handler.stopBatch).Methods(http.MethodPost)
	sr.HandleFunc("/batch/status", handler.batchStatus).Methods(http.MethodGet)
	sr.HandleFunc("/batch/queue", handler.clearBatchQueue).Methods(http.MethodDelete)
}
