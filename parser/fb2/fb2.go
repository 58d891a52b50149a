// Package fb2 parses FictionBook 2.0 documents.
package fb2

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/Disya123/Books-Translate/model"
	"github.com/Disya123/Books-Translate/parser"
	"github.com/Disya123/Books-Translate/util"
	"github.com/pkg/errors"
)

const defaultTitle = "Без названия"
const defaultChapterTitle = "Глава"

var mimeToExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// node is a generic XML element tree. FB2 files are assumed small enough to
// decode whole.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// firstChild finds the first direct child with the local name.
func (n *node) firstChild(name string) *node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// findFirst finds the first descendant with the local name, document order.
func (n *node) findFirst(name string) *node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			return c
		}
		if found := c.findFirst(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll collects every descendant with the local name, document order.
func (n *node) findAll(name string, out []*node) []*node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			out = append(out, c)
		}
		out = c.findAll(name, out)
	}
	return out
}

// allText concatenates the text of the node and all its descendants.
func (n *node) allText() string {
	var sb strings.Builder
	sb.WriteString(n.Text)
	for i := range n.Children {
		sb.WriteString(n.Children[i].allText())
	}
	return sb.String()
}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(path string, onProgress parser.OnProgress) (*model.ParsedNovel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read fb2 file")
	}

	parser.Report(onProgress, parser.Progress{
		ProcessedBytes: int64(len(raw)),
		TotalBytes:     int64(len(raw)),
		Percentage:     100,
		CurrentFile:    filepath.Base(path),
	})

	var root node
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, errors.Wrap(err, "failed to parse fb2 xml")
	}

	return &model.ParsedNovel{
		Metadata: extractMetadata(&root),
		Chapters: extractChapters(&root),
		Images:   extractImages(&root),
	}, nil
}

func extractMetadata(root *node) model.NovelMetadata {
	description := root.findFirst("description")
	if description == nil {
		return model.NovelMetadata{Title: defaultTitle}
	}
	titleInfo := description.findFirst("title-info")
	if titleInfo == nil {
		return model.NovelMetadata{Title: defaultTitle}
	}

	meta := model.NovelMetadata{Title: defaultTitle}
	if t := titleInfo.findFirst("book-title"); t != nil {
		if title := strings.TrimSpace(t.allText()); title != "" {
			meta.Title = title
		}
	}

	if author := titleInfo.findFirst("author"); author != nil {
		var first, last string
		if n := author.findFirst("first-name"); n != nil {
			first = strings.TrimSpace(n.allText())
		}
		if n := author.findFirst("last-name"); n != nil {
			last = strings.TrimSpace(n.allText())
		}
		if full := strings.TrimSpace(first + " " + last); full != "" {
			meta.Author = full
		}
	}

	if a := titleInfo.findFirst("annotation"); a != nil {
		meta.Description = util.HTMLToText(a.allText())
	}

	return meta
}

func extractChapters(root *node) []model.ParsedChapter {
	chapters := make([]model.ParsedChapter, 0)
	body := root.findFirst("body")
	if body == nil {
		return chapters
	}

	number := 1
	for _, section := range body.findAll("section", nil) {
		content := sectionContent(section)
		if strings.TrimSpace(content) == "" {
			continue
		}
		chapters = append(chapters, model.ParsedChapter{
			Number:  number,
			Title:   sectionTitle(section),
			Content: util.HTMLToText(content),
		})
		number++
	}

	return chapters
}

// sectionTitle joins the text of the title's paragraphs.
func sectionTitle(section *node) string {
	title := section.findFirst("title")
	if title == nil {
		return defaultChapterTitle
	}

	parts := make([]string, 0)
	for _, p := range title.findAll("p", nil) {
		if text := strings.TrimSpace(p.allText()); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return defaultChapterTitle
	}
	return strings.Join(parts, " ")
}

// sectionContent joins every paragraph of the section that is not part of a
// title block.
func sectionContent(section *node) string {
	parts := make([]string, 0)
	collectParagraphs(section, false, &parts)
	return strings.Join(parts, "\n\n")
}

func collectParagraphs(n *node, inTitle bool, parts *[]string) {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == "p" && !inTitle {
			if text := strings.TrimSpace(c.allText()); text != "" {
				*parts = append(*parts, text)
			}
			continue
		}
		collectParagraphs(c, inTitle || c.XMLName.Local == "title", parts)
	}
}

func extractImages(root *node) []model.ParsedImage {
	images := make([]model.ParsedImage, 0)
	for _, binary := range root.findAll("binary", nil) {
		id := binary.attr("id")
		contentType := binary.attr("content-type")
		if id == "" || contentType == "" {
			continue
		}

		// FB2 wraps base64 payloads across lines
		data := strings.Join(strings.Fields(binary.Text), "")
		if data == "" {
			continue
		}

		ext, ok := mimeToExt[contentType]
		if !ok {
			ext = ".bin"
		}
		images = append(images, model.ParsedImage{
			Filename: strings.TrimLeft(id, "#_") + ext,
			Data:     data,
			IsCover:  strings.Contains(strings.ToLower(id), "cover"),
		})
	}
	return images
}
