package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	_ "modernc.org/sqlite"
)

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	config.Opts.LogFile = filepath.Join(os.TempDir(), "books-translate-test.log")
	log.Logger = log.NewLogger()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	db, err := sql.Open("sqlite", dir+"/books-translate-test.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	schema, err := os.ReadFile("db/migration/LATEST_SCHEMA.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	return NewStore(db)
}

func createTestNovel(t *testing.T, s *Store, title, slug string) *model.Novel {
	t.Helper()
	novel, err := s.AddNovel(&model.Novel{Title: title, Slug: slug})
	if err != nil {
		t.Fatalf("Failed to add novel: %v", err)
	}
	return novel
}

func TestAddNovelSlugCollision(t *testing.T) {
	s := newTestStore(t)

	first := createTestNovel(t, s, "My Novel", "my-novel")
	if first.Slug != "my-novel" {
		t.Errorf("Expected slug my-novel, got %s", first.Slug)
	}

	second := createTestNovel(t, s, "My Novel", "my-novel")
	if second.Slug != "my-novel-2" {
		t.Errorf("Expected slug my-novel-2, got %s", second.Slug)
	}

	third := createTestNovel(t, s, "My Novel", "my-novel")
	if third.Slug != "my-novel-3" {
		t.Errorf("Expected slug my-novel-3, got %s", third.Slug)
	}
}

func TestChapterCount(t *testing.T) {
	s := newTestStore(t)
	novel := createTestNovel(t, s, "Counted", "counted")

	for i := 1; i <= 3; i++ {
		if _, err := s.AddChapter(&model.Chapter{NovelID: novel.ID, ChapterNumber: i, Content: "text"}); err != nil {
			t.Fatalf("Failed to add chapter %d: %v", i, err)
		}
	}

	if err := s.UpdateChapterCount(novel.ID); err != nil {
		t.Fatalf("Failed to update chapter count: %v", err)
	}

	got, err := s.GetNovel(&model.FindNovel{NovelID: &novel.ID})
	if err != nil {
		t.Fatalf("Failed to get novel: %v", err)
	}
	if got.ChapterCount != 3 {
		t.Errorf("Expected chapter_count 3, got %d", got.ChapterCount)
	}
}

func TestCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	novel := createTestNovel(t, s, "Doomed", "doomed")

	chapter, err := s.AddChapter(&model.Chapter{NovelID: novel.ID, ChapterNumber: 1, Content: "text"})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}
	if _, err := s.SetBookmark(novel.ID, 1); err != nil {
		t.Fatalf("Failed to set bookmark: %v", err)
	}

	if err := s.RemoveNovel(novel.ID, ""); err != nil {
		t.Fatalf("Failed to remove novel: %v", err)
	}

	// ChapterCache may still hold the row, query by number instead
	gone, err := s.GetChapterByNumber(novel.ID, 1)
	if err != nil {
		t.Fatalf("Failed to query chapter: %v", err)
	}
	if gone != nil {
		t.Errorf("Expected chapter %d to be cascade-deleted", chapter.ID)
	}

	bookmark, err := s.GetBookmark(novel.ID)
	if err != nil {
		t.Fatalf("Failed to query bookmark: %v", err)
	}
	if bookmark != nil {
		t.Errorf("Expected bookmark to be cascade-deleted")
	}
}

func TestQueueLifecycle(t *testing.T) {
	s := newTestStore(t)
	novel := createTestNovel(t, s, "Queued", "queued")

	chapterIDs := make([]int, 0, 3)
	for i := 1; i <= 3; i++ {
		c, err := s.AddChapter(&model.Chapter{NovelID: novel.ID, ChapterNumber: i, Content: "text"})
		if err != nil {
			t.Fatalf("Failed to add chapter: %v", err)
		}
		chapterIDs = append(chapterIDs, c.ID)
	}

	for _, id := range chapterIDs {
		if _, err := s.AddQueueItem(&model.QueueItem{ChapterID: id, SourceLang: "en", TargetLang: "Russian"}); err != nil {
			t.Fatalf("Failed to add queue item: %v", err)
		}
	}

	items, err := s.ListQueueItems()
	if err != nil {
		t.Fatalf("Failed to list queue: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	// FIFO by creation
	for i, item := range items {
		if item.ChapterID != chapterIDs[i] {
			t.Errorf("Queue out of order at %d: expected chapter %d, got %d", i, chapterIDs[i], item.ChapterID)
		}
		if item.Status != model.QueueStatusPending {
			t.Errorf("Expected pending, got %s", item.Status)
		}
	}

	if err := s.UpdateQueueItemStatus(items[0].ID, model.QueueStatusCompleted, ""); err != nil {
		t.Fatalf("Failed to complete item: %v", err)
	}
	if err := s.UpdateQueueItemStatus(items[1].ID, model.QueueStatusFailed, "boom"); err != nil {
		t.Fatalf("Failed to fail item: %v", err)
	}

	counts, err := s.QueueCounts()
	if err != nil {
		t.Fatalf("Failed to count queue: %v", err)
	}
	if counts.Total != 3 || counts.Completed != 1 || counts.Failed != 1 || counts.Pending != 1 {
		t.Errorf("Unexpected counts: %+v", counts)
	}

	items, _ = s.ListQueueItems()
	if items[0].CompletedTs == nil {
		t.Errorf("Expected completed item to carry a completion timestamp")
	}
	if items[1].ErrorMessage != "boom" {
		t.Errorf("Expected error message to be recorded, got %q", items[1].ErrorMessage)
	}

	if err := s.ClearQueue(); err != nil {
		t.Fatalf("Failed to clear queue: %v", err)
	}
	counts, _ = s.QueueCounts()
	if counts.Total != 0 {
		t.Errorf("Expected empty queue, got %d items", counts.Total)
	}
}

func TestResetStaleQueueItems(t *testing.T) {
	s := newTestStore(t)
	novel := createTestNovel(t, s, "Stale", "stale")
	c, err := s.AddChapter(&model.Chapter{NovelID: novel.ID, ChapterNumber: 1, Content: "text"})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}

	item, err := s.AddQueueItem(&model.QueueItem{ChapterID: c.ID, SourceLang: "en", TargetLang: "Russian"})
	if err != nil {
		t.Fatalf("Failed to add queue item: %v", err)
	}
	if err := s.UpdateQueueItemStatus(item.ID, model.QueueStatusProcessing, ""); err != nil {
		t.Fatalf("Failed to mark processing: %v", err)
	}

	swept, err := s.ResetStaleQueueItems()
	if err != nil {
		t.Fatalf("Failed to reset stale items: %v", err)
	}
	if swept != 1 {
		t.Errorf("Expected 1 swept item, got %d", swept)
	}

	items, _ := s.ListQueueItems()
	if items[0].Status != model.QueueStatusPending {
		t.Errorf("Expected pending after sweep, got %s", items[0].Status)
	}
}

func TestTranslationCache(t *testing.T) {
	s := newTestStore(t)
	novel := createTestNovel(t, s, "Cached", "cached")
	c, err := s.AddChapter(&model.Chapter{NovelID: novel.ID, ChapterNumber: 1, Content: "hello"})
	if err != nil {
		t.Fatalf("Failed to add chapter: %v", err)
	}

	miss, err := s.GetCachedTranslation(c.ID, "ru")
	if err != nil {
		t.Fatalf("Cache lookup failed: %v", err)
	}
	if miss != nil {
		t.Fatalf("Expected cache miss")
	}

	if _, err := s.SaveCachedTranslation(&model.TranslationCache{
		ChapterID:         c.ID,
		SourceLang:        "en",
		TargetLang:        "Russian",
		TargetCode:        "ru",
		TranslatedContent: "привет",
	}); err != nil {
		t.Fatalf("Failed to save cache entry: %v", err)
	}

	hit, err := s.GetCachedTranslation(c.ID, "ru")
	if err != nil {
		t.Fatalf("Cache lookup failed: %v", err)
	}
	if hit == nil || hit.TranslatedContent != "привет" {
		t.Fatalf("Expected cache hit with stored text, got %+v", hit)
	}

	// Insert-or-replace keyed by (chapter, source, target code)
	if _, err := s.SaveCachedTranslation(&model.TranslationCache{
		ChapterID:         c.ID,
		SourceLang:        "en",
		TargetLang:        "Russian",
		TargetCode:        "ru",
		TranslatedContent: "здравствуйте",
	}); err != nil {
		t.Fatalf("Failed to replace cache entry: %v", err)
	}
	hit, _ = s.GetCachedTranslation(c.ID, "ru")
	if hit.TranslatedContent != "здравствуйте" {
		t.Errorf("Expected replaced content, got %q", hit.TranslatedContent)
	}

	ids, err := s.GetTranslatedChapterIDs(novel.ID, "ru")
	if err != nil {
		t.Fatalf("Failed to list translated chapters: %v", err)
	}
	if len(ids) != 1 || ids[0] != c.ID {
		t.Errorf("Expected [%d], got %v", c.ID, ids)
	}
}
