// Package importer drives a format parser and persists its output.
package importer

import (
	"path/filepath"
	"strings"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"github.com/Disya123/Books-Translate/parser"
	"github.com/Disya123/Books-Translate/parser/epub"
	"github.com/Disya123/Books-Translate/parser/fb2"
	"github.com/Disya123/Books-Translate/parser/txt"
	"github.com/Disya123/Books-Translate/parser/ziparc"
	"github.com/Disya123/Books-Translate/storage"
	"github.com/Disya123/Books-Translate/store"
	"github.com/Disya123/Books-Translate/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Importer struct {
	store   *store.Store
	storage *storage.LocalStorage
}

func New(s *store.Store, ls *storage.LocalStorage) *Importer {
	return &Importer{store: s, storage: ls}
}

// Result summarizes one finished import.
type Result struct {
	Novel        *model.Novel `json:"novel"`
	ChapterCount int          `json:"chapterCount"`
	ImageCount   int          `json:"imageCount"`
}

// ParserFor selects a parser by file extension.
func ParserFor(fileName string) (parser.Parser, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".fb2":
		return fb2.New(), nil
	case ".epub":
		return epub.New(), nil
	case ".zip":
		return ziparc.New(), nil
	case ".txt":
		return txt.New(), nil
	default:
		return nil, errors.Errorf("unknown file format: %s", fileName)
	}
}

// Import parses the file at path and persists the novel, its chapters and
// images. Parse errors surface unmodified, image save failures only log.
func (im *Importer) Import(path, fileName string, onProgress parser.OnProgress) (*Result, error) {
	p, err := ParserFor(fileName)
	if err != nil {
		return nil, err
	}

	parsed, err := p.Parse(path, onProgress)
	if err != nil {
		return nil, err
	}

	novel, err := im.store.AddNovel(&model.Novel{
		Title: parsed.Metadata.Title,
		Slug:  util.Slug(parsed.Metadata.Title),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create novel")
	}

	cover := pickCover(parsed)
	if cover != nil {
		im.saveCover(novel, cover)
	}

	// A half-imported novel is useless, discard the row and its files on a
	// fatal persistence error.
	discard := func(err error) (*Result, error) {
		if removeErr := im.store.RemoveNovel(novel.ID, ""); removeErr != nil {
			log.Warn("Failed to remove half-imported novel", zap.Int("novelID", novel.ID), zap.Error(removeErr))
		}
		if removeErr := im.storage.RemoveNovelDir(novel.Slug); removeErr != nil {
			log.Warn("Failed to remove novel files", zap.String("slug", novel.Slug), zap.Error(removeErr))
		}
		return nil, err
	}

	for _, chapter := range parsed.Chapters {
		if _, err := im.store.AddChapter(&model.Chapter{
			NovelID:       novel.ID,
			ChapterNumber: chapter.Number,
			Content:       chapter.Content,
		}); err != nil {
			return discard(errors.Wrapf(err, "failed to save chapter %d", chapter.Number))
		}
	}
	if err := im.store.UpdateChapterCount(novel.ID); err != nil {
		return discard(errors.Wrap(err, "failed to update chapter count"))
	}

	imageCount := 0
	for i := range parsed.Images {
		img := &parsed.Images[i]
		if img == cover {
			continue
		}
		filePath, err := im.storage.SaveImage(novel.Slug, img.Filename, img.Data)
		if err != nil {
			log.Warn("Failed to save image", zap.String("filename", img.Filename), zap.Error(err))
			continue
		}
		if _, err := im.store.AddImage(&model.Image{
			NovelID:  novel.ID,
			Filename: img.Filename,
			FilePath: filePath,
			IsCover:  false,
		}); err != nil {
			log.Warn("Failed to record image", zap.String("filename", img.Filename), zap.Error(err))
			continue
		}
		imageCount++
	}

	refreshed, err := im.store.GetNovel(&model.FindNovel{NovelID: &novel.ID})
	if err != nil || refreshed == nil {
		refreshed = novel
	}

	log.Info("Imported novel",
		zap.String("title", refreshed.Title),
		zap.String("slug", refreshed.Slug),
		zap.Int("chapters", len(parsed.Chapters)),
		zap.Int("images", imageCount))

	return &Result{
		Novel:        refreshed,
		ChapterCount: len(parsed.Chapters),
		ImageCount:   imageCount,
	}, nil
}

// pickCover prefers an isCover image over the metadata cover.
func pickCover(parsed *model.ParsedNovel) *model.ParsedImage {
	for i := range parsed.Images {
		if parsed.Images[i].IsCover {
			return &parsed.Images[i]
		}
	}
	return parsed.Metadata.Cover
}

// saveCover stores the cover file and records it on the novel row. A broken
// cover never fails the import.
func (im *Importer) saveCover(novel *model.Novel, cover *model.ParsedImage) {
	filePath, err := im.storage.SaveImage(novel.Slug, cover.Filename, cover.Data)
	if err != nil {
		log.Error("Failed to save cover", zap.String("filename", cover.Filename), zap.Error(err))
		return
	}

	if _, err := im.store.AddImage(&model.Image{
		NovelID:  novel.ID,
		Filename: cover.Filename,
		FilePath: filePath,
		IsCover:  true,
	}); err != nil {
		log.Warn("Failed to record cover image", zap.Error(err))
	}
	if _, err := im.store.UpdateNovel(&model.UpdateNovel{
		NovelID:        novel.ID,
		CoverImagePath: &filePath,
	}); err != nil {
		log.Warn("Failed to set cover path", zap.Error(err))
	}
}
