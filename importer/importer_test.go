package importer

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/storage"
	"github.com/Disya123/Books-Translate/store"
	_ "modernc.org/sqlite"
)

func init() {
	config.Opts = config.GetDefaultOptions()
	config.Opts.LogFile = filepath.Join(os.TempDir(), "books-translate-test.log")
	log.Logger = log.NewLogger()
}

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()

	dir := t.TempDir()
	db, err := sql.Open("sqlite", dir+"/test.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../store/db/migration/LATEST_SCHEMA.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	s := store.NewStore(db)
	ls := &storage.LocalStorage{Path: dir}
	return New(s, ls), s
}

func writeNovelZip(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entries := map[string]string{
		"meta.json":       `{"title":"Test Novel","author":"A. Writer"}`,
		"cover.png":       "fakepngbytes",
		"images/map.jpg":  "fakejpgbytes",
		"1.txt":           "First Chapter\nText of chapter one.",
		"2.txt":           "Second Chapter\nText of chapter two.",
	}
	for name, body := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry: %v", err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatalf("Failed to write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "novel.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestImportZip(t *testing.T) {
	im, s := newTestImporter(t)

	result, err := im.Import(writeNovelZip(t), "novel.zip", nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Novel.Title != "Test Novel" {
		t.Errorf("Unexpected title: %q", result.Novel.Title)
	}
	if result.Novel.Slug != "test-novel" {
		t.Errorf("Unexpected slug: %q", result.Novel.Slug)
	}
	if result.ChapterCount != 2 {
		t.Errorf("Expected 2 chapters, got %d", result.ChapterCount)
	}
	if result.Novel.ChapterCount != 2 {
		t.Errorf("Expected denormalized chapter_count 2, got %d", result.Novel.ChapterCount)
	}
	if result.Novel.CoverImagePath == "" {
		t.Errorf("Expected a cover path to be recorded")
	}
	if _, err := os.Stat(result.Novel.CoverImagePath); err != nil {
		t.Errorf("Cover file missing on disk: %v", err)
	}

	chapters, err := s.ListChapters(result.Novel.ID)
	if err != nil {
		t.Fatalf("Failed to list chapters: %v", err)
	}
	if len(chapters) != 2 || chapters[0].Content != "Text of chapter one." {
		t.Errorf("Unexpected chapters: %+v", chapters)
	}

	cover, err := s.GetCoverImage(result.Novel.ID)
	if err != nil || cover == nil {
		t.Fatalf("Expected a cover image row, err: %v", err)
	}
	content, err := s.ListNovelImages(result.Novel.ID)
	if err != nil {
		t.Fatalf("Failed to list images: %v", err)
	}
	if len(content) != 1 || content[0].Filename != "map.jpg" {
		t.Errorf("Unexpected content images: %+v", content)
	}
	if result.ImageCount != 1 {
		t.Errorf("Expected 1 content image, got %d", result.ImageCount)
	}
}

func TestImportUnknownFormat(t *testing.T) {
	im, _ := newTestImporter(t)

	if _, err := im.Import("/tmp/whatever.pdf", "whatever.pdf", nil); err == nil {
		t.Fatal("Expected an error for an unsupported extension")
	}
}

func TestImportDuplicateTitles(t *testing.T) {
	im, _ := newTestImporter(t)

	first, err := im.Import(writeNovelZip(t), "novel.zip", nil)
	if err != nil {
		t.Fatalf("First import failed: %v", err)
	}
	second, err := im.Import(writeNovelZip(t), "novel.zip", nil)
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}

	if first.Novel.Slug == second.Novel.Slug {
		t.Errorf("Expected distinct slugs, both are %q", first.Novel.Slug)
	}
	if second.Novel.Slug != "test-novel-2" {
		t.Errorf("Unexpected second slug: %q", second.Novel.Slug)
	}
}

func TestParserForExtensions(t *testing.T) {
	for _, name := range []string{"a.fb2", "b.EPUB", "c.zip", "d.TXT"} {
		if _, err := ParserFor(name); err != nil {
			t.Errorf("Expected a parser for %s, got error: %v", name, err)
		}
	}
	if _, err := ParserFor("e.mobi"); err == nil {
		t.Error("Expected an error for .mobi")
	}
}
