package model //import "github.com/Disya123/Books-Translate/model"

type Novel struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	CoverImagePath string `json:"cover_image_path"`
	ChapterCount   int    `json:"chapter_count"`
	CreatedTs      int64  `json:"created_ts"`
	UpdatedTs      int64  `json:"updated_ts"`
}

type FindNovel struct {
	NovelID *int    `json:"novel_id"`
	Slug    *string `json:"slug"`
	Title   *string `json:"title"`

	// The maximum number of novels to return.
	Limit *int `json:"limit"`
}

type UpdateNovel struct {
	NovelID        int     `json:"novel_id"`
	Title          *string `json:"title"`
	CoverImagePath *string `json:"cover_image_path"`
}

type Chapter struct {
	ID            int    `json:"id"`
	NovelID       int    `json:"novel_id"`
	ChapterNumber int    `json:"chapter_number"`
	Content       string `json:"content"`
	CreatedTs     int64  `json:"created_ts"`
}

type Bookmark struct {
	ID            int `json:"id"`
	NovelID       int `json:"novel_id"`
	ChapterNumber int `json:"chapter_number"`
}

type Image struct {
	ID        int    `json:"id"`
	NovelID   int    `json:"novel_id"`
	ChapterID *int   `json:"chapter_id"`
	Filename  string `json:"filename"`
	FilePath  string `json:"file_path"`
	IsCover   bool   `json:"is_cover"`
	CreatedTs int64  `json:"created_ts"`
}
