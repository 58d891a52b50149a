// Package ziparc parses the bespoke chapter-per-file ZIP convention:
// numbered .txt chapters at the archive root, an optional images/ folder,
// an optional cover and an optional meta.json.
package ziparc

import (
	"archive/zip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"github.com/Disya123/Books-Translate/parser"
	"github.com/Disya123/Books-Translate/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultTitle = "Новая новелла"
const emptyChapterContent = "Пустая глава"

var (
	coverNameRegexp   = regexp.MustCompile(`(?i)^(logo|cover)\.(png|jpg|jpeg|webp)$`)
	coverImagesRegexp = regexp.MustCompile(`(?i)^images/(logo|cover)\.(png|jpg|jpeg|webp)$`)
	imageExtRegexp    = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|webp|gif)$`)
	chapterFileRegexp = regexp.MustCompile(`(?i)^\d+\.txt$|^chapter\d+\.txt$`)
	leadingIntRegexp  = regexp.MustCompile(`\d+`)
)

// entry is one archive file with the base directory prefix stripped.
type entry struct {
	relativeName string
	cleanName    string
	data         []byte
}

type zipMeta struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(path string, onProgress parser.OnProgress) (*model.ParsedNovel, error) {
	parser.Report(onProgress, parser.Progress{TotalBytes: 100, Percentage: 0})

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open zip archive")
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	paths := make([]string, 0, len(r.File))
	for _, f := range r.File {
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if isJunkEntry(name) {
			continue
		}
		if f.FileInfo().IsDir() || name == "" {
			continue
		}
		files = append(files, f)
		paths = append(paths, name)
	}
	parser.Report(onProgress, parser.Progress{ProcessedBytes: 20, TotalBytes: 100, Percentage: 20})

	baseDir := detectBaseDir(paths)
	log.Debug("Detected zip base directory", zap.String("baseDir", baseDir))

	entries := make([]*entry, 0, len(files))
	for i, f := range files {
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}

		relativeName := paths[i]
		if baseDir != "" {
			relativeName = strings.TrimPrefix(relativeName, baseDir+"/")
		}
		parts := strings.Split(relativeName, "/")
		entries = append(entries, &entry{
			relativeName: relativeName,
			cleanName:    parts[len(parts)-1],
			data:         data,
		})

		if (i+1)%5 == 0 {
			pct := 20 + float64(i+1)/float64(len(files))*70
			parser.Report(onProgress, parser.Progress{
				ProcessedBytes: int64(pct),
				TotalBytes:     100,
				Percentage:     pct,
				CurrentFile:    parts[len(parts)-1],
			})
		}
	}

	cover := findCover(entries)
	novel := &model.ParsedNovel{
		Metadata: readMetadata(entries, baseDir),
		Chapters: extractChapters(entries),
		Images:   collectImages(entries, cover),
	}

	parser.Report(onProgress, parser.Progress{ProcessedBytes: 100, TotalBytes: 100, Percentage: 100})
	return novel, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open archive entry %s", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read archive entry %s", f.Name)
	}
	return data, nil
}

// isJunkEntry filters macOS resource forks and hidden files at any depth.
func isJunkEntry(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if util.HasPrefixes(part, ".", "__MACOSX") {
			return true
		}
	}
	return false
}

// detectBaseDir returns the shared top-level folder when every file lives
// under it, otherwise an empty string.
func detectBaseDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	firstParts := strings.Split(paths[0], "/")
	if len(firstParts) < 2 {
		return ""
	}
	root := firstParts[0]
	for _, p := range paths {
		if !strings.HasPrefix(p, root+"/") {
			return ""
		}
	}
	return root
}

// findCover applies the cover priority: root level first, then images/, then
// a matching file name anywhere in the archive.
func findCover(entries []*entry) *entry {
	for _, e := range entries {
		if !strings.Contains(e.relativeName, "/") && coverNameRegexp.MatchString(e.cleanName) {
			return e
		}
	}
	for _, e := range entries {
		if coverImagesRegexp.MatchString(e.relativeName) {
			return e
		}
	}
	for _, e := range entries {
		if coverNameRegexp.MatchString(e.cleanName) {
			return e
		}
	}
	return nil
}

func collectImages(entries []*entry, cover *entry) []model.ParsedImage {
	images := make([]model.ParsedImage, 0)
	if cover != nil && len(cover.data) > 0 {
		images = append(images, model.ParsedImage{
			Filename: cover.cleanName,
			Data:     base64.StdEncoding.EncodeToString(cover.data),
			IsCover:  true,
		})
	}

	for _, e := range entries {
		if e == cover || len(e.data) == 0 {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(e.relativeName), "images/") {
			continue
		}
		if !imageExtRegexp.MatchString(e.cleanName) {
			continue
		}
		images = append(images, model.ParsedImage{
			Filename: e.cleanName,
			Data:     base64.StdEncoding.EncodeToString(e.data),
			IsCover:  false,
		})
	}
	return images
}

// extractChapters picks the root-level numbered text files, sorted by their
// embedded number, and renumbers them densely from 1.
func extractChapters(entries []*entry) []model.ParsedChapter {
	chapterFiles := make([]*entry, 0)
	for _, e := range entries {
		if !strings.Contains(e.relativeName, "/") && chapterFileRegexp.MatchString(e.cleanName) {
			chapterFiles = append(chapterFiles, e)
		}
	}

	sort.SliceStable(chapterFiles, func(i, j int) bool {
		return chapterFileNumber(chapterFiles[i].cleanName) < chapterFileNumber(chapterFiles[j].cleanName)
	})

	chapters := make([]model.ParsedChapter, 0, len(chapterFiles))
	for _, e := range chapterFiles {
		if len(e.data) == 0 {
			continue
		}
		number := len(chapters) + 1

		content := string(e.data)
		lines := strings.Split(content, "\n")
		titleLine := strings.TrimSpace(lines[0])

		title := fmt.Sprintf("Глава %d", number)
		text := content
		if titleLine != "" && len([]rune(titleLine)) < 100 {
			title = titleLine
			text = strings.TrimSpace(strings.Join(lines[1:], "\n"))
		}
		if text == "" {
			text = emptyChapterContent
		}

		chapters = append(chapters, model.ParsedChapter{
			Number:  number,
			Title:   title,
			Content: text,
		})
	}
	return chapters
}

// chapterFileNumber extracts the number embedded in a chapter file name, so
// 10.txt sorts after 2.txt.
func chapterFileNumber(name string) int {
	match := leadingIntRegexp.FindString(name)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

func readMetadata(entries []*entry, baseDir string) model.NovelMetadata {
	var meta zipMeta
	for _, e := range entries {
		if e.cleanName != "meta.json" || len(e.data) == 0 {
			continue
		}
		if err := json.Unmarshal(e.data, &meta); err != nil {
			log.Warn("Failed to parse meta.json", zap.Error(err))
		}
		break
	}

	title := meta.Title
	if title == "" {
		title = baseDir
	}
	if title == "" {
		title = fmt.Sprintf("%s %d", defaultTitle, time.Now().Unix())
	}

	return model.NovelMetadata{
		Title:       title,
		Author:      meta.Author,
		Description: meta.Description,
	}
}
