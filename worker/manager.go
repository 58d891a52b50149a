// Package worker owns the durable chapter translation queue and its
// sequential processing loop.
package worker

import (
	"context"
	"sync"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"github.com/Disya123/Books-Translate/store"
	"github.com/Disya123/Books-Translate/translator"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrAlreadyRunning rejects a second concurrent batch.
var ErrAlreadyRunning = errors.New("translation batch is already running")

// Translator is the one call the manager needs from the translation client.
type Translator interface {
	Translate(ctx context.Context, req translator.Request, onChunk translator.OnChunk) (string, error)
}

// StartOptions describes one batch.
type StartOptions struct {
	NovelID    int    `json:"novelId"`
	ChapterIDs []int  `json:"chapterIds"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
	TargetCode string `json:"targetCode"`
	// PauseAfterChapter halts the loop after every finished item
	PauseAfterChapter bool `json:"pauseAfterChapter"`
}

// Status is the externally visible batch state.
type Status struct {
	IsProcessing bool               `json:"isProcessing"`
	Paused       bool               `json:"paused"`
	Counts       *model.QueueCounts `json:"counts"`
}

// Manager runs at most one batch at a time. Chapters are translated strictly
// sequentially, one in-flight call, and a failed item never aborts the rest.
type Manager struct {
	store      *store.Store
	translator Translator
	notifier   Notifier
	keepAlive  KeepAlive

	mu           sync.Mutex
	isProcessing bool
	shouldPause  bool
	paused       bool
	targetCode   string
	cancel       context.CancelFunc

	wg sync.WaitGroup
}

func NewManager(s *store.Store, tr Translator, notifier Notifier, keepAlive KeepAlive) *Manager {
	if notifier == nil {
		notifier = logNotifier{}
	}
	if keepAlive == nil {
		keepAlive = nopKeepAlive{}
	}
	return &Manager{
		store:      s,
		translator: tr,
		notifier:   notifier,
		keepAlive:  keepAlive,
	}
}

// Start rejects when a batch is mid-flight, otherwise replaces the queue
// with one pending item per chapter and launches the processing loop.
func (m *Manager) Start(opts StartOptions) error {
	m.mu.Lock()
	if m.isProcessing {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.isProcessing = true
	m.shouldPause = opts.PauseAfterChapter
	m.paused = false
	m.targetCode = opts.TargetCode
	m.mu.Unlock()

	abort := func(err error) error {
		m.mu.Lock()
		m.isProcessing = false
		m.mu.Unlock()
		return err
	}

	if err := m.store.ClearQueue(); err != nil {
		return abort(errors.Wrap(err, "failed to clear previous queue"))
	}
	for _, chapterID := range opts.ChapterIDs {
		if _, err := m.store.AddQueueItem(&model.QueueItem{
			ChapterID:  chapterID,
			SourceLang: opts.SourceLang,
			TargetLang: opts.TargetLang,
		}); err != nil {
			return abort(errors.Wrapf(err, "failed to enqueue chapter %d", chapterID))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	m.keepAlive.Start()
	m.notifier.BatchStarted(len(opts.ChapterIDs))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.processQueue(ctx)
	}()
	return nil
}

// processQueue walks the pending items in creation order. The pause flag is
// honored between items, never mid-item.
func (m *Manager) processQueue(ctx context.Context) {
	items, err := m.store.ListQueueItems()
	if err != nil {
		log.Error("Failed to load translation queue", zap.Error(err))
		m.finish(false)
		return
	}

	for _, item := range items {
		if item.Status != model.QueueStatusPending {
			continue
		}

		m.mu.Lock()
		running := m.isProcessing
		m.mu.Unlock()
		if !running || ctx.Err() != nil {
			return
		}

		m.processItem(ctx, item)

		m.mu.Lock()
		pause := m.shouldPause && m.isProcessing
		if pause {
			m.isProcessing = false
			m.paused = true
		}
		m.mu.Unlock()
		if pause {
			m.keepAlive.Stop()
			m.notifier.BatchPaused(m.snapshot())
			return
		}
	}

	m.finish(true)
}

func (m *Manager) processItem(ctx context.Context, item *model.QueueItem) {
	if err := m.store.UpdateQueueItemStatus(item.ID, model.QueueStatusProcessing, ""); err != nil {
		log.Error("Failed to mark queue item processing", zap.Int("itemID", item.ID), zap.Error(err))
	}

	chapter, err := m.store.GetChapter(item.ChapterID)
	if err == nil && chapter == nil {
		err = errors.Errorf("chapter %d not found", item.ChapterID)
	}
	if err == nil {
		_, err = m.translator.Translate(ctx, translator.Request{
			ChapterID:  item.ChapterID,
			SourceLang: item.SourceLang,
			TargetLang: item.TargetLang,
			TargetCode: m.targetCode,
			Content:    chapter.Content,
		}, nil)
	}

	if err != nil {
		if updateErr := m.store.UpdateQueueItemStatus(item.ID, model.QueueStatusFailed, err.Error()); updateErr != nil {
			log.Error("Failed to mark queue item failed", zap.Int("itemID", item.ID), zap.Error(updateErr))
		}
		m.notifier.ChapterFailed(item.ChapterID, err.Error())
		return
	}

	if err := m.store.UpdateQueueItemStatus(item.ID, model.QueueStatusCompleted, ""); err != nil {
		log.Error("Failed to mark queue item completed", zap.Int("itemID", item.ID), zap.Error(err))
	}
	m.notifier.ChapterCompleted(item.ChapterID)
}

func (m *Manager) finish(notify bool) {
	m.mu.Lock()
	wasProcessing := m.isProcessing
	m.isProcessing = false
	m.paused = false
	m.mu.Unlock()

	m.keepAlive.Stop()
	if notify && wasProcessing {
		m.notifier.BatchCompleted(m.snapshot())
	}
}

// Pause requests a halt before the next item. An in-flight translation is
// never interrupted.
func (m *Manager) Pause() {
	m.mu.Lock()
	m.shouldPause = true
	m.mu.Unlock()
}

// Resume clears the pause flag and restarts the loop over the remaining
// pending items when no loop is active.
func (m *Manager) Resume() error {
	m.mu.Lock()
	m.shouldPause = false
	m.paused = false
	if m.targetCode == "" {
		// A fresh process resuming a surviving queue has no batch state,
		// the configured code keeps the cache partition consistent.
		m.targetCode = config.Opts.TargetCode
	}
	if m.isProcessing {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	counts, err := m.store.QueueCounts()
	if err != nil {
		return errors.Wrap(err, "failed to inspect queue")
	}
	if counts.Pending == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if m.isProcessing {
		m.mu.Unlock()
		cancel()
		return nil
	}
	m.isProcessing = true
	m.cancel = cancel
	m.mu.Unlock()

	m.keepAlive.Start()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.processQueue(ctx)
	}()
	return nil
}

// Stop halts processing and destroys the queue. Distinct from Pause.
func (m *Manager) Stop() error {
	m.mu.Lock()
	m.isProcessing = false
	m.shouldPause = false
	m.paused = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.keepAlive.Stop()
	m.wg.Wait()
	return m.store.ClearQueue()
}

// Shutdown halts processing but keeps the queue, so the next run can pick
// up the remaining items.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.isProcessing = false
	m.shouldPause = false
	m.paused = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.keepAlive.Stop()
	m.wg.Wait()
}

// ClearQueue resets the queue without touching the running flag.
func (m *Manager) ClearQueue() error {
	return m.store.ClearQueue()
}

func (m *Manager) IsProcessing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isProcessing
}

// Status reports the batch state with aggregate queue counts.
func (m *Manager) Status() (*Status, error) {
	counts, err := m.store.QueueCounts()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return &Status{
		IsProcessing: m.isProcessing,
		Paused:       m.paused,
		Counts:       counts,
	}, nil
}

// Wait blocks until the current processing loop exits.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) snapshot() Snapshot {
	counts, err := m.store.QueueCounts()
	if err != nil {
		log.Error("Failed to read queue counts", zap.Error(err))
		return Snapshot{}
	}
	return Snapshot{
		Total:     counts.Total,
		Pending:   counts.Pending,
		Completed: counts.Completed,
		Failed:    counts.Failed,
	}
}
