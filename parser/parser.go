// Package parser defines the common contract shared by all format parsers.
package parser

import "github.com/Disya123/Books-Translate/model"

// Progress reports how far a parse has advanced. Percentage stays within
// 0..100 and never decreases across successive callbacks.
type Progress struct {
	ProcessedBytes int64   `json:"processedBytes"`
	TotalBytes     int64   `json:"totalBytes"`
	Percentage     float64 `json:"percentage"`
	CurrentFile    string  `json:"currentFile,omitempty"`
}

// OnProgress receives progress updates during a parse. May be nil.
type OnProgress func(Progress)

// Parser turns one input file into a ParsedNovel.
type Parser interface {
	Parse(path string, onProgress OnProgress) (*model.ParsedNovel, error)
}

// Report invokes the callback when one is set.
func Report(onProgress OnProgress, p Progress) {
	if onProgress != nil {
		onProgress(p)
	}
}
