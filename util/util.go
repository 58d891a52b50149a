package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HasPrefixes returns true if the string s has any of the given prefixes.
func HasPrefixes(src string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(src, prefix) {
			return true
		}
	}
	return false
}

func GenUUID() string {
	return uuid.New().String()
}

var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

var (
	slugInvalidRegexp = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegexp   = regexp.MustCompile(`\s+`)
	slugDashRegexp    = regexp.MustCompile(`-+`)
)

// Slug derives a URL-safe identifier from a novel title. Cyrillic letters are
// transliterated, everything else non-alphanumeric is dropped. An empty result
// falls back to a timestamped name so the slug is never empty.
func Slug(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if latin, ok := cyrillicToLatin[r]; ok {
			sb.WriteString(latin)
			continue
		}
		sb.WriteRune(r)
	}

	slug := slugInvalidRegexp.ReplaceAllString(sb.String(), "")
	slug = slugSpaceRegexp.ReplaceAllString(slug, "-")
	slug = slugDashRegexp.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return fmt.Sprintf("novel-%d", time.Now().UnixMilli())
	}
	return slug
}

// generateNewFileName is a helper function to generate a new file name
func GenerateNewFileName(filePath string) string {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return filePath // file does not exist, return the same name
	}

	dir := filepath.Dir(filePath)
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	fileName := strings.TrimSuffix(base, ext)

	existingFiles, err := filepath.Glob(filepath.Join(dir, fileName+"_*[0-9]"+ext))
	if err != nil {
		return filePath
	}

	index := 1
	for _, existingFile := range existingFiles {
		existingBase := filepath.Base(existingFile)
		existingName := strings.TrimSuffix(existingBase, ext)
		var existingIndex int
		fileName = strings.Split(existingName, "_")[0]
		existingIndex, err = strconv.Atoi(strings.Split(existingName, "_")[1])
		if err == nil && existingIndex >= index {
			index = existingIndex + 1
		}
	}
	newFileName := fmt.Sprintf("%s_%d%s", fileName, index, ext)
	return filepath.Join(dir, newFileName)
}

// GenerateNewDirName is the directory flavor of GenerateNewFileName.
func GenerateNewDirName(dirPath string) string {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return dirPath
	}

	parent := filepath.Dir(dirPath)
	dirName := filepath.Base(dirPath)

	existingDirs, err := filepath.Glob(filepath.Join(parent, dirName+"_*[0-9]"))
	if err != nil {
		return dirPath
	}

	index := 1
	for _, existingDir := range existingDirs {
		existingName := filepath.Base(existingDir)
		var existingIndex int
		dirName = strings.Split(existingName, "_")[0]
		existingIndex, err = strconv.Atoi(strings.Split(existingName, "_")[1])
		if err == nil && existingIndex >= index {
			index = existingIndex + 1
		}
	}
	return filepath.Join(parent, fmt.Sprintf("%s_%d", dirName, index))
}
