// Package txt parses plain text files with heuristic chapter splitting.
package txt

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"github.com/Disya123/Books-Translate/parser"
	"github.com/Disya123/Books-Translate/util"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

const defaultTitle = "Без названия"
const prologueTitle = "Пролог"
const wholeTextTitle = "Текст"

// chapterMarkers are tried in priority order, the first one with a match
// splits the document.
var chapterMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^===+$`),
	regexp.MustCompile(`(?m)^\*\*\*+$`),
	regexp.MustCompile(`(?mi)^(Глава|Chapter)\s+\d+$`),
	regexp.MustCompile(`(?m)^\d+\.$`),
}

var (
	blankBlockRegexp  = regexp.MustCompile(`\n{3,}`)
	equalsLineRegexp  = regexp.MustCompile(`^===+$`)
	starsLineRegexp   = regexp.MustCompile(`^\*\*\*+$`)
	chapterLineRegexp = regexp.MustCompile(`(?i)^(Глава|Chapter)`)
)

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(path string, onProgress parser.OnProgress) (*model.ParsedNovel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read txt file")
	}

	size := int64(len(raw))
	parser.Report(onProgress, parser.Progress{TotalBytes: size, Percentage: 0, CurrentFile: filepath.Base(path)})

	content := decodeText(raw)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	parser.Report(onProgress, parser.Progress{ProcessedBytes: size, TotalBytes: size, Percentage: 100})

	return &model.ParsedNovel{
		Metadata: extractMetadata(content),
		Chapters: extractChapters(content),
		Images:   []model.ParsedImage{},
	}, nil
}

// decodeText assumes UTF-8 and falls back to windows-1251, the common
// encoding of older Russian e-book text files.
func decodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
	if err != nil {
		log.Warn("Failed to decode text as windows-1251, keeping raw bytes")
		return string(raw)
	}
	return string(decoded)
}

func extractChapters(content string) []model.ParsedChapter {
	for _, marker := range chapterMarkers {
		matches := marker.FindAllStringIndex(content, -1)
		if len(matches) == 0 {
			continue
		}

		chapters := make([]model.ParsedChapter, 0, len(matches)+1)

		// Text before the first marker becomes an implicit prologue
		if matches[0][0] > 0 {
			if prologue := strings.TrimSpace(content[:matches[0][0]]); prologue != "" {
				chapters = append(chapters, model.ParsedChapter{
					Number:  1,
					Title:   prologueTitle,
					Content: util.HTMLToText(prologue),
				})
			}
		}

		for i, m := range matches {
			end := len(content)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			body := strings.TrimSpace(content[m[1]:end])
			if body == "" {
				continue
			}
			chapters = append(chapters, model.ParsedChapter{
				Number:  len(chapters) + 1,
				Title:   strings.TrimSpace(content[m[0]:m[1]]),
				Content: util.HTMLToText(body),
			})
		}

		return chapters
	}

	// No markers at all. A text with many long paragraph blocks reads fine as
	// a single chapter, a short one is cut into three even parts.
	blocks := blankBlockRegexp.Split(content, -1)
	long := 0
	for _, b := range blocks {
		if utf8.RuneCountInString(strings.TrimSpace(b)) > 100 {
			long++
		}
	}

	if long > 5 {
		return []model.ParsedChapter{{
			Number:  1,
			Title:   wholeTextTitle,
			Content: util.HTMLToText(content),
		}}
	}

	runes := []rune(content)
	chunkSize := int(math.Ceil(float64(len(runes)) / 3))
	chapters := make([]model.ParsedChapter, 0, 3)
	for i := 0; i < 3; i++ {
		start := i * chunkSize
		if start > len(runes) {
			start = len(runes)
		}
		end := (i + 1) * chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chapters = append(chapters, model.ParsedChapter{
			Number:  i + 1,
			Title:   fmt.Sprintf("Часть %d", i+1),
			Content: util.HTMLToText(string(runes[start:end])),
		})
	}
	return chapters
}

// extractMetadata takes the first plausible line as the title.
func extractMetadata(content string) model.NovelMetadata {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		length := utf8.RuneCountInString(line)
		if length <= 3 || length >= 200 {
			continue
		}
		if equalsLineRegexp.MatchString(line) || starsLineRegexp.MatchString(line) || chapterLineRegexp.MatchString(line) {
			continue
		}
		return model.NovelMetadata{Title: line}
	}
	return model.NovelMetadata{Title: defaultTitle}
}
