package v1

import (
	"encoding/json"
	"net/http"

	"github.com/Disya123/Books-Translate/http/request"
	"github.com/Disya123/Books-Translate/http/response"
	"github.com/Disya123/Books-Translate/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (h *Handler) listChapters(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	chapters, err := h.store.ListChapters(novelID)
	if err != nil {
		log.Error("Error listing chapters", zap.Int("novelID", novelID), zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, chapters)
}

func (h *Handler) getChapter(w http.ResponseWriter, r *http.Request) {
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
	response.OK(w, r, chapter)
}

func (h *Handler) getChapterByNumber(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")
	number := request.RouteIntParam(r, "number")

	chapter, err := h.store.GetChapterByNumber(novelID, number)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if chapter == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, chapter)
}

type updateChapterRequest struct {
	Content string `json:"content"`
}

func (h *Handler) updateChapter(w http.ResponseWriter, r *http.Request) {
	chapterID := request.RouteIntParam(r, "id")

	var req updateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, errors.New("invalid request body"))
		return
	}

	chapter, err := h.store.GetChapter(chapterID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if chapter == nil {
		response.NotFound(w, r)
		return
	}

	if err := h.store.UpdateChapterContent(chapterID, req.Content); err != nil {
		log.Error("Failed to update chapter", zap.Int("chapterID", chapterID), zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *Handler) deleteChapter(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.RemoveChapter(chapterID); err != nil {
		log.Error("Failed to delete chapter", zap.Int("chapterID", chapterID), zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if err := h.store.UpdateChapterCount(chapter.NovelID); err != nil {
		log.Warn("Failed to refresh chapter count", zap.Int("novelID", chapter.NovelID), zap.Error(err))
	}
	response.NoContent(w, r)
}

func (h *Handler) getBookmark(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	bookmark, err := h.store.GetBookmark(novelID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if bookmark == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, bookmark)
}

type setBookmarkRequest struct {
	ChapterNumber int `json:"chapter_number"`
}

func (h *Handler) setBookmark(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	var req setBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, errors.New("invalid request body"))
		return
	}
	if req.ChapterNumber < 1 {
		response.BadRequest(w, r, errors.New("chapter_number must be positive"))
		return
	}

	bookmark, err := h.store.SetBookmark(novelID, req.ChapterNumber)
	if err != nil {
		log.Error("Failed to set bookmark", zap.Int("novelID", novelID), zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, bookmark)
}

func (h *Handler) removeBookmark(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	if err := h.store.RemoveBookmark(novelID); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.NoContent(w, r)
}
