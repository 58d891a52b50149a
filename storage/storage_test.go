package storage

import (
	"encoding/base64"
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

func TestSaveAndRemoveNovelDir(t *testing.T) {
	s := &LocalStorage{Path: t.TempDir()}

	data := base64.StdEncoding.EncodeToString([]byte("imagebytes"))
	path, err := s.SaveImage("my-novel", "cover.png", data)
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if path != filepath.Join(s.NovelDir("my-novel"), "cover.png") {
		t.Errorf("Unexpected stored path: %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Stored image missing: %v", err)
	}
	if string(raw) != "imagebytes" {
		t.Errorf("Unexpected image content: %q", raw)
	}

	if err := s.RemoveNovelDir("my-novel"); err != nil {
		t.Fatalf("RemoveNovelDir failed: %v", err)
	}
	if _, err := os.Stat(s.NovelDir("my-novel")); !os.IsNotExist(err) {
		t.Error("Expected the novel directory to be gone")
	}

	// Removing a missing directory or an empty slug is a no-op
	if err := s.RemoveNovelDir("my-novel"); err != nil {
		t.Errorf("Second removal must succeed: %v", err)
	}
	if err := s.RemoveNovelDir(""); err != nil {
		t.Errorf("Empty slug must be ignored: %v", err)
	}
}

func TestSaveImageRejectsBadData(t *testing.T) {
	s := &LocalStorage{Path: t.TempDir()}

	if _, err := s.SaveImage("my-novel", "cover.png", "not base64!"); err == nil {
		t.Fatal("Expected a decode error")
	}
}
