package model

// ParsedNovel is the transient result of running a format parser over one
// input file. It is consumed exactly once by the import orchestrator.
type ParsedNovel struct {
	Metadata NovelMetadata   `json:"metadata"`
	Chapters []ParsedChapter `json:"chapters"`
	Images   []ParsedImage   `json:"images"`
}

type NovelMetadata struct {
	Title       string       `json:"title"`
	Author      string       `json:"author,omitempty"`
	Description string       `json:"description,omitempty"`
	Cover       *ParsedImage `json:"cover,omitempty"`
}

// ParsedChapter numbers are 1-based and strictly increasing in parse order.
// Content is plain text with paragraph breaks encoded as double newline.
type ParsedChapter struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ParsedImage struct {
	Filename string `json:"filename"`
	// Data is the raw image content encoded as base64
	Data    string `json:"data"`
	IsCover bool   `json:"is_cover"`
}
