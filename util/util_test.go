package util

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"My Great Novel", "my-great-novel"},
		{"  Spaces   Everywhere  ", "spaces-everywhere"},
		{"Глава первая", "glava-pervaya"},
		{"Щи да каша", "shchi-da-kasha"},
		{"Hello, World! (2024)", "hello-world-2024"},
		{"---dashes---", "dashes"},
	}

	for _, tt := range tests {
		if got := Slug(tt.title); got != tt.expected {
			t.Errorf("Slug(%q) = %q, expected %q", tt.title, got, tt.expected)
		}
	}
}

func TestSlugFallback(t *testing.T) {
	got := Slug("!!! ???")
	if !strings.HasPrefix(got, "novel-") {
		t.Errorf("Expected timestamped fallback slug, got %q", got)
	}
}

func TestGenerateNewFileName(t *testing.T) {
	dir := os.TempDir()
	fileDir := dir + "/books-translate-test-util"
	fileLoc := fileDir + "/test.fb2"
	if _, err := os.Stat(fileDir); os.IsNotExist(err) {
		err := os.Mkdir(fileDir, 0755)
		if err != nil {
			t.Fatalf("Error create tempDir: %s, err: %v", fileDir, err)
		}
	}
	defer os.RemoveAll(fileDir)

	if _, err := os.Create(fileLoc); err != nil {
		t.Fatalf("Error create file: %s", fileLoc)
	}

	for i := 1; i < 15; i++ {
		newFile := GenerateNewFileName(fileLoc)
		t.Logf("New filename: %s", newFile)
		expected := fmt.Sprintf("%s/test_%d.fb2", fileDir, i)
		if newFile != expected {
			t.Errorf("Error generate new filename, expected: %s, but got: %s", expected, newFile)
		}
		if _, err := os.Create(newFile); err != nil {
			t.Errorf("Error create new file: %s, err: %v", newFile, err)
		}
	}
}

func TestGenerateNewDirName(t *testing.T) {
	dir := os.TempDir()
	fileDir := dir + "/books-translate-test-util-dir"
	curDir := fileDir + "/test"
	if _, err := os.Stat(fileDir); os.IsNotExist(err) {
		err := os.Mkdir(fileDir, 0755)
		if err != nil {
			t.Fatalf("Error create tempDir: %s, err: %v", fileDir, err)
		}
	}
	defer os.RemoveAll(fileDir)

	if err := os.MkdirAll(curDir, os.ModePerm); err != nil {
		t.Fatalf("Error create dir: %s", curDir)
	}

	for i := 1; i < 15; i++ {
		newDir := GenerateNewDirName(curDir)
		t.Logf("New dirname: %s", newDir)
		expected := fmt.Sprintf("%s/test_%d", fileDir, i)
		if newDir != expected {
			t.Errorf("Error generate new dirname, expected: %s, but got: %s", expected, newDir)
		}
		if err := os.MkdirAll(newDir, os.ModePerm); err != nil {
			t.Errorf("Error create new dir: %s, err: %v", newDir, err)
		}
	}
}
