package store

import (
	"time"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"go.uber.org/zap"
)

// ListQueueItems returns the whole translation queue in FIFO order.
func (s *Store) ListQueueItems() ([]*model.QueueItem, error) {
	query := `
		SELECT id, chapter_id, source_lang, target_lang, status, COALESCE(error_message, ''), created_ts, completed_ts
		FROM translation_queue
		ORDER BY created_ts ASC, id ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		log.Error("Failed to query translation queue", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.QueueItem, 0)
	for rows.Next() {
		var item model.QueueItem
		if err := rows.Scan(
			&item.ID,
			&item.ChapterID,
			&item.SourceLang,
			&item.TargetLang,
			&item.Status,
			&item.ErrorMessage,
			&item.CreatedTs,
			&item.CompletedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) AddQueueItem(item *model.QueueItem) (*model.QueueItem, error) {
	stmt := `
		INSERT INTO translation_queue (chapter_id, source_lang, target_lang, status, created_ts)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, chapter_id, source_lang, target_lang, status, COALESCE(error_message, ''), created_ts, completed_ts
	`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	var q model.QueueItem
	if err := tx.QueryRow(stmt, item.ChapterID, item.SourceLang, item.TargetLang, model.QueueStatusPending, time.Now().Unix()).Scan(
		&q.ID,
		&q.ChapterID,
		&q.SourceLang,
		&q.TargetLang,
		&q.Status,
		&q.ErrorMessage,
		&q.CreatedTs,
		&q.CompletedTs,
	); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &q, nil
}

// UpdateQueueItemStatus records a status transition. A completed item gets a
// completion timestamp, a failed one keeps its error message.
func (s *Store) UpdateQueueItemStatus(itemID int, status, errorMessage string) error {
	set, args := []string{"status = ?"}, []any{status}

	if status == model.QueueStatusCompleted {
		set, args = append(set, "completed_ts = ?"), append(args, time.Now().Unix())
	}
	if errorMessage != "" {
		set, args = append(set, "error_message = ?"), append(args, errorMessage)
	} else if status != model.QueueStatusFailed {
		set = append(set, "error_message = NULL")
	}
	args = append(args, itemID)

	stmt := "UPDATE translation_queue SET "
	for i, clause := range set {
		if i > 0 {
			stmt += ", "
		}
		stmt += clause
	}
	stmt += " WHERE id = ?"

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.db.Exec(stmt, args...)
	return err
}

func (s *Store) ClearQueue() error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.db.Exec("DELETE FROM translation_queue")
	return err
}

// ResetStaleQueueItems sweeps items left in processing status by a previous
// run back to pending. Called once at startup, before any batch may start.
func (s *Store) ResetStaleQueueItems() (int64, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	res, err := s.db.Exec(
		"UPDATE translation_queue SET status = ?, error_message = NULL WHERE status = ?",
		model.QueueStatusPending, model.QueueStatusProcessing,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// QueueCounts aggregates the queue by status.
func (s *Store) QueueCounts() (*model.QueueCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(status = 'pending'), 0),
			COALESCE(SUM(status = 'processing'), 0),
			COALESCE(SUM(status = 'completed'), 0),
			COALESCE(SUM(status = 'failed'), 0)
		FROM translation_queue
	`

	var counts model.QueueCounts
	if err := s.db.QueryRow(query).Scan(
		&counts.Total,
		&counts.Pending,
		&counts.Processing,
		&counts.Completed,
		&counts.Failed,
	); err != nil {
		return nil, err
	}

	return &counts, nil
}
