package model

const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
)

// QueueItem is one durable chapter-translation job.
type QueueItem struct {
	ID           int    `json:"id"`
	ChapterID    int    `json:"chapter_id"`
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	CreatedTs    int64  `json:"created_ts"`
	CompletedTs  *int64 `json:"completed_ts"`
}

// TranslationCache memoizes one chapter translation per target code. An
// identical chapter+target pair never triggers a second remote call.
type TranslationCache struct {
	ID                int    `json:"id"`
	ChapterID         int    `json:"chapter_id"`
	SourceLang        string `json:"source_lang"`
	TargetLang        string `json:"target_lang"`
	TargetCode        string `json:"target_code"`
	TranslatedContent string `json:"translated_content"`
	CreatedTs         int64  `json:"created_ts"`
}

// QueueCounts is the aggregate view of the translation queue.
type QueueCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
