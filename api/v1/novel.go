package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/http/request"
	"github.com/Disya123/Books-Translate/http/response"
	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// importNovel accepts one uploaded book file, parses it and persists the
// novel with its chapters and images. The whole import runs in-request so
// the client receives the final result.
func (h *Handler) importNovel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Opts.MaxUploadSize << 20); err != nil {
		log.Error("Max upload size exceeded", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		response.BadRequest(w, r, fmt.Errorf("only one file is allowed"))
		return
	}

	fileBase := filepath.Base(files[0].Filename)
	ext := filepath.Ext(fileBase)
	if ext == "" || !config.CheckSupportedTypes(ext[1:]) {
		log.Error("Unsupported file type", zap.String("file_type", ext))
		response.BadRequest(w, r, fmt.Errorf("unsupported file type: %s", strings.TrimPrefix(ext, ".")))
		return
	}

	src, err := files[0].Open()
	if err != nil {
		response.ServerError(w, r, errors.Wrap(err, "could not open uploaded file"))
		return
	}
	defer src.Close()

	tmpDir := filepath.Join(config.Opts.Data, "tmp")
	if err := os.MkdirAll(tmpDir, os.ModePerm); err != nil {
		response.ServerError(w, r, errors.Wrap(err, "could not create temp dir for import"))
		return
	}

	tmpPath := filepath.Join(tmpDir, fileBase)
	dst, err := os.Create(tmpPath)
	if err != nil {
		response.ServerError(w, r, errors.Wrap(err, "could not save uploaded file"))
		return
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		response.ServerError(w, r, errors.Wrap(err, "could not write uploaded file"))
		return
	}
	dst.Close()

	result, err := h.importer.Import(tmpPath, fileBase, nil)
	if err != nil {
		log.Error("Import failed", zap.String("file", fileBase), zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	response.Created(w, r, result)
}

func (h *Handler) listNovels(w http.ResponseWriter, r *http.Request) {
	novels, err := h.store.ListNovels(&model.FindNovel{})
	if err != nil {
		log.Error("Error listing novels", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, novels)
}

func (h *Handler) getNovel(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	novel, err := h.store.GetNovel(&model.FindNovel{NovelID: &novelID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if novel == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, novel)
}

type updateNovelRequest struct {
	Title string `json:"title"`
}

func (h *Handler) updateNovel(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	var req updateNovelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, errors.New("invalid request body"))
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		response.BadRequest(w, r, errors.New("title cannot be empty"))
		return
	}

	novel, err := h.store.UpdateNovel(&model.UpdateNovel{NovelID: novelID, Title: &title})
	if err != nil {
		log.Error("Failed to update novel", zap.Int("novelID", novelID), zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, novel)
}

func (h *Handler) deleteNovel(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	novel, err := h.store.GetNovel(&model.FindNovel{NovelID: &novelID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if novel == nil {
		response.NotFound(w, r)
		return
	}

	log.Debug("Deleting novel", zap.Int("novelID", novelID), zap.String("slug", novel.Slug))
	if err := h.store.RemoveNovel(novelID, config.Opts.Data); err != nil {
		log.Error("Failed to delete novel", zap.Int("novelID", novelID), zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

func (h *Handler) listImages(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	images, err := h.store.ListNovelImages(novelID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, images)
}

func (h *Handler) getCover(w http.ResponseWriter, r *http.Request) {
	novelID := request.RouteIntParam(r, "id")

	cover, err := h.store.GetCoverImage(novelID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if cover == nil {
		response.NotFound(w, r)
		return
	}

	log.Debug("Serving cover", zap.Int("novelID", novelID), zap.String("path", cover.FilePath))
	http.ServeFile(w, r, cover.FilePath)
}
