package store

import (
	"database/sql"

	"github.com/Disya123/Books-Translate/model"
)

func (s *Store) GetBookmark(novelID int) (*model.Bookmark, error) {
	query := "SELECT id, novel_id, chapter_number FROM bookmarks WHERE novel_id = ?"

	var b model.Bookmark
	if err := s.db.QueryRow(query, novelID).Scan(&b.ID, &b.NovelID, &b.ChapterNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &b, nil
}

// SetBookmark stores the reading position, one bookmark per novel.
func (s *Store) SetBookmark(novelID, chapterNumber int) (*model.Bookmark, error) {
	stmt := `
		INSERT OR REPLACE INTO bookmarks (novel_id, chapter_number)
		VALUES (?, ?)
		RETURNING id, novel_id, chapter_number
	`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var b model.Bookmark
	if err := s.db.QueryRow(stmt, novelID, chapterNumber).Scan(&b.ID, &b.NovelID, &b.ChapterNumber); err != nil {
		return nil, err
	}

	return &b, nil
}

func (s *Store) RemoveBookmark(novelID int) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.db.Exec("DELETE FROM bookmarks WHERE novel_id = ?", novelID)
	return err
}
