package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/http/request"
	"github.com/Disya123/Books-Translate/http/response"
	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/translator"
	"github.com/Disya123/Books-Translate/worker"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type translateRequest struct {
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
	TargetCode string `json:"targetCode"`
}

func (t *translateRequest) applyDefaults() {
	if t.SourceLang == "" {
		t.SourceLang = config.Opts.SourceLanguage
	}
	if t.TargetLang == "" {
		t.TargetLang = config.Opts.TargetLanguage
	}
	if t.TargetCode == "" {
		t.TargetCode = config.Opts.TargetCode
	}
}

// translateChapter streams one chapter translation to the client as
// server-sent events. Each event carries the full accumulated text, the
// terminal event is [DONE]. A cached translation produces a single event.
func (h *Handler) translateChapter(w http.ResponseWriter, r *http.Request) {
	chapterID := request.RouteIntParam(r, "id")

	chapter, err := h.store.GetChapter(chapterID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if chapter == nil {
		response.NotFound(w, r)
		return
	}

	var req translateRequest
	if r.Body != nil {
		// The body is optional, decode errors fall back to configured languages
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	req.applyDefaults()

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.ServerError(w, r, errors.New("streaming is not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	onChunk := func(accumulated string) {
		payload, err := json.Marshal(map[string]string{"content": accumulated})
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	_, err = h.translator.Translate(r.Context(), translator.Request{
		ChapterID:  chapterID,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		TargetCode: req.TargetCode,
		Content:    chapter.Content,
	}, onChunk)
	if err != nil {
		log.Error("Chapter translation failed", zap.Int("chapterID", chapterID), zap.Error(err))
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (h *Handler) translatedChapters(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")
	targetCode := request.QueryStringParam(r, "target_code", config.Opts.TargetCode)

	ids, err := h.store.GetTranslatedChapterIDs(novelID, targetCode)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, ids)
}

func (h *Handler) clearTranslationCache(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearTranslationCache(); err != nil {
		log.Error("Failed to clear translation cache", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *Handler) startBatch(w http.ResponseWriter, r *http.Request) {
	var opts worker.StartOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		response.BadRequest(w, r, errors.New("invalid request body"))
		return
	}
	if opts.SourceLang == "" {
		opts.SourceLang = config.Opts.SourceLanguage
	}
	if opts.TargetLang == "" {
		opts.TargetLang = config.Opts.TargetLanguage
	}
	if opts.TargetCode == "" {
		opts.TargetCode = config.Opts.TargetCode
	}

	// With no explicit selection the batch covers every untranslated
	// chapter of the novel.
	if len(opts.ChapterIDs) == 0 {
		if opts.NovelID == 0 {
			response.BadRequest(w, r, errors.New("either chapterIds or novelId is required"))
			return
		}
		ids, err := h.untranslatedChapterIDs(opts.NovelID, opts.TargetCode)
		if err != nil {
			response.ServerError(w, r, err)
			return
		}
		opts.ChapterIDs = ids
	}
	if len(opts.ChapterIDs) == 0 {
		response.BadRequest(w, r, errors.New("no chapters to translate"))
		return
	}

	if err := h.manager.Start(opts); err != nil {
		if errors.Is(err, worker.ErrAlreadyRunning) {
			response.Conflict(w, r, err)
			return
		}
		response.ServerError(w, r, err)
		return
	}

	status, err := h.manager.Status()
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.Created(w, r, status)
}

func (h *Handler) untranslatedChapterIDs(novelID int, targetCode string) ([]int, error) {
	chapters, err := h.store.ListChapters(novelID)
	if err != nil {
		return nil, err
	}
	translated, err := h.store.GetTranslatedChapterIDs(novelID, targetCode)
	if err != nil {
		return nil, err
	}

	done := make(map[int]bool, len(translated))
	for _, id := range translated {
		done[id] = true
	}

	ids := make([]int, 0, len(chapters))
	for _, chapter := range chapters {
		if !done[chapter.ID] {
			ids = append(ids, chapter.ID)
		}
	}
	return ids, nil
}

func (h *Handler) pauseBatch(w http.ResponseWriter, r *http.Request) {
	h.manager.Pause()
	response.Accepted(w, r)
}

func (h *Handler) resumeBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Resume(); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.Accepted(w, r)
}

func (h *Handler) stopBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Stop(); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *Handler) batchStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.manager.Status()
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, status)
}

func (h *Handler) clearBatchQueue(w http.ResponseWriter, r *http.Request) {
	if h.manager.IsProcessing() {
		response.Conflict(w, r, worker.ErrAlreadyRunning)
		return
	}
	if err := h.manager.ClearQueue(); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.NoContent(w, r)
}
