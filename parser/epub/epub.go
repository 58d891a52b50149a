// Package epub parses EPUB containers.
package epub

import (
	"archive/zip"
	"encoding/base64"
	"encoding/xml"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"github.com/Disya123/Books-Translate/parser"
	"github.com/Disya123/Books-Translate/util"
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultTitle = "Без названия"
const defaultChapterTitle = "Глава"

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Metadata struct {
		Title       string `xml:"http://purl.org/dc/elements/1.1/ title"`
		Creator     string `xml:"http://purl.org/dc/elements/1.1/ creator"`
		Description string `xml:"http://purl.org/dc/elements/1.1/ description"`
	} `xml:"metadata"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Itemrefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(path string, onProgress parser.OnProgress) (*model.ParsedNovel, error) {
	parser.Report(onProgress, parser.Progress{TotalBytes: 100, Percentage: 0, CurrentFile: filepath.Base(path)})

	scratch := filepath.Join(os.TempDir(), "epub-"+util.GenUUID())
	// The scratch directory must never outlive the parse
	defer os.RemoveAll(scratch)

	if err := extractArchive(path, scratch); err != nil {
		return nil, err
	}
	parser.Report(onProgress, parser.Progress{ProcessedBytes: 50, TotalBytes: 100, Percentage: 50})

	containerPath := findFile(scratch, "container.xml")
	if containerPath == "" {
		return nil, errors.New("epub is missing META-INF/container.xml")
	}

	opfPath, err := readRootfilePath(containerPath)
	if err != nil {
		return nil, err
	}

	opfPath = filepath.Join(scratch, filepath.FromSlash(opfPath))
	raw, err := os.ReadFile(opfPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read opf package document")
	}

	var pkg opfPackage
	if err := xml.Unmarshal(raw, &pkg); err != nil {
		return nil, errors.Wrap(err, "failed to parse opf package document")
	}
	parser.Report(onProgress, parser.Progress{ProcessedBytes: 70, TotalBytes: 100, Percentage: 70})

	metadata := model.NovelMetadata{Title: defaultTitle}
	if title := strings.TrimSpace(pkg.Metadata.Title); title != "" {
		metadata.Title = title
	}
	metadata.Author = strings.TrimSpace(pkg.Metadata.Creator)
	if desc := strings.TrimSpace(pkg.Metadata.Description); desc != "" {
		metadata.Description = util.HTMLToText(desc)
	}
	parser.Report(onProgress, parser.Progress{ProcessedBytes: 85, TotalBytes: 100, Percentage: 85})

	opfDir := filepath.Dir(opfPath)
	chapters, err := extractChapters(&pkg, opfDir)
	if err != nil {
		return nil, err
	}
	images := extractImages(&pkg, opfDir)

	parser.Report(onProgress, parser.Progress{ProcessedBytes: 100, TotalBytes: 100, Percentage: 100})

	return &model.ParsedNovel{
		Metadata: metadata,
		Chapters: chapters,
		Images:   images,
	}, nil
}

// extractArchive unpacks the zip into dest, refusing entries that escape it.
func extractArchive(path, dest string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return errors.Wrap(err, "failed to open epub archive")
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", target)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", target)
		}
		if err := copyEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func copyEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "failed to open archive entry %s", f.Name)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", target)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return errors.Wrapf(err, "failed to extract %s", f.Name)
	}
	return nil
}

// findFile walks the tree looking for the first file with the given name.
func findFile(root, name string) string {
	var found string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func readRootfilePath(containerPath string) (string, error) {
	raw, err := os.ReadFile(containerPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to read container.xml")
	}

	var c container
	if err := xml.Unmarshal(raw, &c); err != nil {
		return "", errors.Wrap(err, "failed to parse container.xml")
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", errors.New("container.xml does not name an opf rootfile")
	}
	return c.Rootfiles[0].FullPath, nil
}

func extractChapters(pkg *opfPackage, opfDir string) ([]model.ParsedChapter, error) {
	items := make(map[string]opfItem, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		if item.ID != "" && item.Href != "" {
			items[item.ID] = item
		}
	}

	chapters := make([]model.ParsedChapter, 0)
	number := 1
	for _, ref := range pkg.Spine.Itemrefs {
		item, ok := items[ref.IDRef]
		if !ok || !strings.Contains(item.MediaType, "application/xhtml+xml") {
			continue
		}

		chapterPath := filepath.Join(opfDir, filepath.FromSlash(item.Href))
		f, err := os.Open(chapterPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open chapter %s", item.Href)
		}

		doc, err := goquery.NewDocumentFromReader(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse chapter %s", item.Href)
		}

		content := chapterContent(doc)
		if strings.TrimSpace(content) == "" {
			continue
		}
		chapters = append(chapters, model.ParsedChapter{
			Number:  number,
			Title:   chapterTitle(doc),
			Content: util.HTMLToText(content),
		})
		number++
	}

	return chapters, nil
}

func chapterTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if h2 := strings.TrimSpace(doc.Find("h2").First().Text()); h2 != "" {
		return h2
	}
	return defaultChapterTitle
}

func chapterContent(doc *goquery.Document) string {
	parts := make([]string, 0)
	doc.Find("body p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// extractImages reads every manifest image item. Unreadable files are logged
// and skipped rather than failing the whole import.
func extractImages(pkg *opfPackage, opfDir string) []model.ParsedImage {
	images := make([]model.ParsedImage, 0)
	for _, item := range pkg.Manifest.Items {
		if !strings.HasPrefix(item.MediaType, "image/") || item.ID == "" || item.Href == "" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(opfDir, filepath.FromSlash(item.Href)))
		if err != nil {
			log.Warn("Failed to read epub image", zap.String("href", item.Href), zap.Error(err))
			continue
		}

		images = append(images, model.ParsedImage{
			Filename: filepath.Base(filepath.FromSlash(item.Href)),
			Data:     base64.StdEncoding.EncodeToString(raw),
			IsCover:  strings.Contains(strings.ToLower(item.ID), "cover"),
		})
	}
	return images
}
