package txt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/log"
)

func init() {
	config.Opts = config.GetDefaultOptions()
	config.Opts.LogFile = filepath.Join(os.TempDir(), "books-translate-test.log")
	log.Logger = log.NewLogger()
}

func writeTxt(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write txt fixture: %v", err)
	}
	return path
}

func TestChapterMarkers(t *testing.T) {
	doc := "Глава 1\nПервый текст.\n\nГлава 2\nВторой текст."

	novel, err := New().Parse(writeTxt(t, []byte(doc)), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(novel.Chapters) != 2 {
		t.Fatalf("Expected 2 chapters, got %d", len(novel.Chapters))
	}
	if novel.Chapters[0].Title != "Глава 1" || novel.Chapters[0].Content != "Первый текст." {
		t.Errorf("Unexpected first chapter: %+v", novel.Chapters[0])
	}
	if novel.Chapters[1].Title != "Глава 2" || novel.Chapters[1].Number != 2 {
		t.Errorf("Unexpected second chapter: %+v", novel.Chapters[1])
	}
}

func TestPrologueBeforeFirstMarker(t *testing.T) {
	doc := "Вступительное слово автора.\n\nChapter 1\nMain text."

	novel, err := New().Parse(writeTxt(t, []byte(doc)), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(novel.Chapters) != 2 {
		t.Fatalf("Expected prologue plus chapter, got %d", len(novel.Chapters))
	}
	if novel.Chapters[0].Title != "Пролог" || novel.Chapters[0].Number != 1 {
		t.Errorf("Unexpected prologue: %+v", novel.Chapters[0])
	}
	if novel.Chapters[1].Title != "Chapter 1" || novel.Chapters[1].Number != 2 {
		t.Errorf("Unexpected chapter: %+v", novel.Chapters[1])
	}
}

func TestSeparatorLines(t *testing.T) {
	doc := "Intro text before anything.\n===\nFirst block.\n===\nSecond block."

	novel, err := New().Parse(writeTxt(t, []byte(doc)), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(novel.Chapters) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(novel.Chapters))
	}
	if novel.Chapters[1].Title != "===" {
		t.Errorf("Expected the marker as title, got %q", novel.Chapters[1].Title)
	}
}

func TestFallbackThreeWaySplit(t *testing.T) {
	doc := "My Book\n\nGlava 1\nText one.\n\nGlava 2\nText two."

	novel, err := New().Parse(writeTxt(t, []byte(doc)), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if novel.Metadata.Title != "My Book" {
		t.Errorf("Unexpected title: %q", novel.Metadata.Title)
	}
	if len(novel.Chapters) != 3 {
		t.Fatalf("Expected 3 part chapters, got %d", len(novel.Chapters))
	}
	for i, c := range novel.Chapters {
		if c.Number != i+1 {
			t.Errorf("Chapter %d has number %d", i, c.Number)
		}
		if !strings.HasPrefix(c.Title, "Часть ") {
			t.Errorf("Unexpected part title: %q", c.Title)
		}
	}
}

func TestManyLongParagraphsSingleChapter(t *testing.T) {
	block := strings.Repeat("Длинное предложение ради объёма. ", 10)
	doc := strings.Repeat(block+"\n\n\n", 7)

	novel, err := New().Parse(writeTxt(t, []byte(doc)), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(novel.Chapters) != 1 {
		t.Fatalf("Expected a single chapter, got %d", len(novel.Chapters))
	}
	if novel.Chapters[0].Title != "Текст" {
		t.Errorf("Unexpected title: %q", novel.Chapters[0].Title)
	}
}

func TestWindows1251Fallback(t *testing.T) {
	// "Глава 1\nТекст главы." in windows-1251
	raw := []byte{0xC3, 0xEB, 0xE0, 0xE2, 0xE0, 0x20, 0x31, 0x0A,
		0xD2, 0xE5, 0xEA, 0xF1, 0xF2, 0x20, 0xE3, 0xEB, 0xE0, 0xE2, 0xFB, 0x2E}

	novel, err := New().Parse(writeTxt(t, raw), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(novel.Chapters) != 1 {
		t.Fatalf("Expected 1 chapter, got %d", len(novel.Chapters))
	}
	if novel.Chapters[0].Title != "Глава 1" {
		t.Errorf("Expected decoded marker title, got %q", novel.Chapters[0].Title)
	}
	if novel.Chapters[0].Content != "Текст главы." {
		t.Errorf("Unexpected decoded content: %q", novel.Chapters[0].Content)
	}
}

func TestMetadataSkipsMarkers(t *testing.T) {
	doc := "===\nГлава 5\nНастоящее название книги\nтекст"

	novel, err := New().Parse(writeTxt(t, []byte(doc)), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if novel.Metadata.Title != "Настоящее название книги" {
		t.Errorf("Unexpected title: %q", novel.Metadata.Title)
	}
}
