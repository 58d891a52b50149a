package store

import (
	"database/sql"
	"time"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"go.uber.org/zap"
)

func (s *Store) AddImage(image *model.Image) (*model.Image, error) {
	stmt := `
		INSERT INTO images (novel_id, chapter_id, filename, file_path, is_cover, created_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, novel_id, chapter_id, filename, file_path, is_cover, created_ts
	`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var img model.Image
	if err := s.db.QueryRow(stmt,
		image.NovelID,
		image.ChapterID,
		image.Filename,
		image.FilePath,
		image.IsCover,
		time.Now().Unix(),
	).Scan(
		&img.ID,
		&img.NovelID,
		&img.ChapterID,
		&img.Filename,
		&img.FilePath,
		&img.IsCover,
		&img.CreatedTs,
	); err != nil {
		return nil, err
	}

	return &img, nil
}

// ListNovelImages returns the non-cover content images of a novel.
func (s *Store) ListNovelImages(novelID int) ([]*model.Image, error) {
	query := `
		SELECT id, novel_id, chapter_id, filename, file_path, is_cover, created_ts
		FROM images
		WHERE novel_id = ? AND is_cover = 0
		ORDER BY created_ts ASC
	`

	rows, err := s.db.Query(query, novelID)
	if err != nil {
		log.Error("Failed to query images", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Image, 0)
	for rows.Next() {
		var img model.Image
		if err := rows.Scan(
			&img.ID,
			&img.NovelID,
			&img.ChapterID,
			&img.Filename,
			&img.FilePath,
			&img.IsCover,
			&img.CreatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &img)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) GetCoverImage(novelID int) (*model.Image, error) {
	query := `
		SELECT id, novel_id, chapter_id, filename, file_path, is_cover, created_ts
		FROM images
		WHERE novel_id = ? AND is_cover = 1
	`

	var img model.Image
	if err := s.db.QueryRow(query, novelID).Scan(
		&img.ID,
		&img.NovelID,
		&img.ChapterID,
		&img.Filename,
		&img.FilePath,
		&img.IsCover,
		&img.CreatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &img, nil
}
