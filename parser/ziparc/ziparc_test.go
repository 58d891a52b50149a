package ziparc

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/log"
)

func init() {
	config.Opts = config.GetDefaultOptions()
	config.Opts.LogFile = filepath.Join(os.TempDir(), "books-translate-test.log")
	log.Logger = log.NewLogger()
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "novel.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write zip fixture: %v", err)
	}
	return path
}

func TestNumericChapterOrder(t *testing.T) {
	path := writeZip(t, map[string]string{
		"10.txt": "Tenth\n\nContent ten.",
		"2.txt":  "Second\n\nContent two.",
		"1.txt":  "First\n\nContent one.",
	})

	novel, err := New().Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(novel.Chapters) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(novel.Chapters))
	}

	expected := []string{"First", "Second", "Tenth"}
	for i, c := range novel.Chapters {
		if c.Number != i+1 {
			t.Errorf("Chapter %d has number %d", i, c.Number)
		}
		if c.Title != expected[i] {
			t.Errorf("Expected title %q at position %d, got %q", expected[i], i, c.Title)
		}
	}
}

func TestCoverPrecedence(t *testing.T) {
	path := writeZip(t, map[string]string{
		"cover.png":        "rootcover",
		"images/cover.png": "nestedcover",
		"1.txt":            "Chapter one text",
	})

	novel, err := New().Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	covers := 0
	for _, img := range novel.Images {
		if img.IsCover {
			covers++
		}
	}
	if covers != 1 {
		t.Fatalf("Expected exactly one cover, got %d", covers)
	}
	// The root-level file wins, so the nested one stays a content image
	if len(novel.Images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(novel.Images))
	}
	if !novel.Images[0].IsCover || novel.Images[0].Filename != "cover.png" {
		t.Errorf("Unexpected cover: %+v", novel.Images[0])
	}
}

func TestCoverFallbackToImagesDir(t *testing.T) {
	path := writeZip(t, map[string]string{
		"images/logo.jpg": "imgdata",
		"1.txt":           "text",
	})

	novel, err := New().Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(novel.Images) != 1 || !novel.Images[0].IsCover {
		t.Fatalf("Expected the images/ logo to be picked as cover, got %+v", novel.Images)
	}
}

func TestBaseDirStripped(t *testing.T) {
	path := writeZip(t, map[string]string{
		"My Novel/1.txt":          "Intro\n\nBody text.",
		"My Novel/chapter2.txt":   "Next\n\nMore text.",
		"My Novel/images/pic.png": "imgdata",
	})

	novel, err := New().Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if novel.Metadata.Title != "My Novel" {
		t.Errorf("Expected base directory as title, got %q", novel.Metadata.Title)
	}
	if len(novel.Chapters) != 2 {
		t.Errorf("Expected 2 chapters, got %d", len(novel.Chapters))
	}
	if len(novel.Images) != 1 || novel.Images[0].Filename != "pic.png" {
		t.Errorf("Unexpected images: %+v", novel.Images)
	}
}

func TestMetaJSON(t *testing.T) {
	path := writeZip(t, map[string]string{
		"meta.json": `{"title":"Заголовок","author":"Кто-то","description":"О чём"}`,
		"1.txt":     "text",
	})

	novel, err := New().Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if novel.Metadata.Title != "Заголовок" || novel.Metadata.Author != "Кто-то" || novel.Metadata.Description != "О чём" {
		t.Errorf("Unexpected metadata: %+v", novel.Metadata)
	}
}

func TestJunkEntriesIgnored(t *testing.T) {
	path := writeZip(t, map[string]string{
		"__MACOSX/1.txt":  "junk",
		".hidden":         "junk",
		"notes/.DS_Store": "junk",
		"1.txt":           "Title\n\nReal content.",
	})

	novel, err := New().Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(novel.Chapters) != 1 {
		t.Fatalf("Expected 1 chapter, got %d", len(novel.Chapters))
	}
	if novel.Chapters[0].Content != "Real content." {
		t.Errorf("Unexpected content: %q", novel.Chapters[0].Content)
	}
}

func TestLongFirstLineKeptInContent(t *testing.T) {
	long := make([]byte, 0, 120)
	for i := 0; i < 120; i++ {
		long = append(long, 'x')
	}
	path := writeZip(t, map[string]string{
		"1.txt": string(long) + "\nrest",
	})

	novel, err := New().Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	c := novel.Chapters[0]
	if c.Title != "Глава 1" {
		t.Errorf("Expected synthesized title, got %q", c.Title)
	}
	if c.Content != string(long)+"\nrest" {
		t.Errorf("Expected whole file as content, got %q", c.Content)
	}
}
