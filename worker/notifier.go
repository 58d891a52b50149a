package worker

import (
	"fmt"

	"github.com/Disya123/Books-Translate/log"
	"go.uber.org/zap"
)

// Notifier receives user-facing batch lifecycle events. Delivery mechanics
// (push, toast, system tray) are the implementation's concern.
type Notifier interface {
	BatchStarted(total int)
	BatchPaused(counts Snapshot)
	ChapterCompleted(chapterID int)
	ChapterFailed(chapterID int, message string)
	BatchCompleted(counts Snapshot)
}

// Snapshot is the aggregate queue state at the time of an event.
type Snapshot struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Summary renders the completion message shown to the user.
func (s Snapshot) Summary() string {
	if s.Failed > 0 {
		return fmt.Sprintf("completed %d/%d chapters (%d failed)", s.Completed, s.Total, s.Failed)
	}
	return fmt.Sprintf("all %d chapters translated", s.Total)
}

// KeepAlive is the platform keep-alive collaborator, signaled while a batch
// runs so the host environment does not suspend the process.
type KeepAlive interface {
	Start()
	Stop()
}

type nopKeepAlive struct{}

func (nopKeepAlive) Start() {}
func (nopKeepAlive) Stop()  {}

// logNotifier is the default notifier, it only writes the event log.
type logNotifier struct{}

func (logNotifier) BatchStarted(total int) {
	log.Info("Batch translation started", zap.Int("total", total))
}

func (logNotifier) BatchPaused(counts Snapshot) {
	log.Info("Batch translation paused", zap.Int("pending", counts.Pending))
}

func (logNotifier) ChapterCompleted(chapterID int) {
	log.Debug("Chapter translated", zap.Int("chapterID", chapterID))
}

func (logNotifier) ChapterFailed(chapterID int, message string) {
	log.Warn("Chapter translation failed", zap.Int("chapterID", chapterID), zap.String("error", message))
}

func (logNotifier) BatchCompleted(counts Snapshot) {
	log.Info("Batch translation finished", zap.String("summary", counts.Summary()))
}
