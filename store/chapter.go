package store

import (
	"database/sql"
	"time"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"go.uber.org/zap"
)

func (s *Store) GetChapter(chapterID int) (*model.Chapter, error) {
	if cache, ok := s.ChapterCache.Load(chapterID); ok {
		return cache.(*model.Chapter), nil
	}

	query := `
		SELECT id, novel_id, chapter_number, content, created_ts
		FROM chapters
		WHERE id = ?
	`

	var c model.Chapter
	if err := s.db.QueryRow(query, chapterID).Scan(
		&c.ID,
		&c.NovelID,
		&c.ChapterNumber,
		&c.Content,
		&c.CreatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	s.ChapterCache.Store(c.ID, &c)
	return &c, nil
}

func (s *Store) GetChapterByNumber(novelID, chapterNumber int) (*model.Chapter, error) {
	query := `
		SELECT id, novel_id, chapter_number, content, created_ts
		FROM chapters
		WHERE novel_id = ? AND chapter_number = ?
	`

	var c model.Chapter
	if err := s.db.QueryRow(query, novelID, chapterNumber).Scan(
		&c.ID,
		&c.NovelID,
		&c.ChapterNumber,
		&c.Content,
		&c.CreatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &c, nil
}

func (s *Store) ListChapters(novelID int) ([]*model.Chapter, error) {
	query := `
		SELECT id, novel_id, chapter_number, content, created_ts
		FROM chapters
		WHERE novel_id = ?
		ORDER BY chapter_number ASC
	`

	rows, err := s.db.Query(query, novelID)
	if err != nil {
		log.Error("Failed to query chapters", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Chapter, 0)
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(
			&c.ID,
			&c.NovelID,
			&c.ChapterNumber,
			&c.Content,
			&c.CreatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) AddChapter(chapter *model.Chapter) (*model.Chapter, error) {
	stmt := `
		INSERT INTO chapters (novel_id, chapter_number, content, created_ts)
		VALUES (?, ?, ?, ?)
		RETURNING id, novel_id, chapter_number, content, created_ts
	`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	var c model.Chapter
	if err := tx.QueryRow(stmt, chapter.NovelID, chapter.ChapterNumber, chapter.Content, time.Now().Unix()).Scan(
		&c.ID,
		&c.NovelID,
		&c.ChapterNumber,
		&c.Content,
		&c.CreatedTs,
	); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &c, nil
}

// UpdateChapterContent replaces the chapter text, used by the editor surface.
// Cached translations for the chapter keep referencing it by id.
func (s *Store) UpdateChapterContent(chapterID int, content string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	if _, err := s.db.Exec("UPDATE chapters SET content = ? WHERE id = ?", content, chapterID); err != nil {
		return err
	}

	s.ChapterCache.Delete(chapterID)
	return nil
}

func (s *Store) RemoveChapter(chapterID int) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	if _, err := s.db.Exec("DELETE FROM chapters WHERE id = ?", chapterID); err != nil {
		return err
	}

	s.ChapterCache.Delete(chapterID)
	return nil
}
