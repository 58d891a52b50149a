package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (s *Store) GetNovel(find *model.FindNovel) (*model.Novel, error) {
	if find.NovelID != nil {
		if cache, ok := s.NovelCache.Load(*find.NovelID); ok {
			return cache.(*model.Novel), nil
		}
	}

	list, err := s.ListNovels(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	novel := list[0]
	s.NovelCache.Store(novel.ID, novel)
	return novel, nil
}

func (s *Store) ListNovels(find *model.FindNovel) ([]*model.Novel, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.NovelID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Slug; v != nil {
		where, args = append(where, "slug = ?"), append(args, *v)
	}
	if v := find.Title; v != nil {
		where, args = append(where, "title = ?"), append(args, *v)
	}

	query := `
		SELECT
			id,
			title,
			slug,
			cover_image_path,
			chapter_count,
			created_ts,
			updated_ts
		FROM novels
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query novels", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Novel, 0)
	for rows.Next() {
		var novel model.Novel
		if err := rows.Scan(
			&novel.ID,
			&novel.Title,
			&novel.Slug,
			&novel.CoverImagePath,
			&novel.ChapterCount,
			&novel.CreatedTs,
			&novel.UpdatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &novel)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// AddNovel inserts a novel resolving slug collisions with a numeric suffix:
// "novel", "novel-2", "novel-3", ...
func (s *Store) AddNovel(novel *model.Novel) (*model.Novel, error) {
	finalSlug := novel.Slug
	counter := 2
	for {
		existing, err := s.GetNovel(&model.FindNovel{Slug: &finalSlug})
		if err != nil {
			return nil, err
		}
		if existing == nil {
			break
		}
		finalSlug = fmt.Sprintf("%s-%d", novel.Slug, counter)
		counter++
	}

	stmt := `
		INSERT INTO novels (title, slug, cover_image_path, chapter_count, created_ts, updated_ts)
		VALUES (?, ?, ?, 0, ?, ?)
		RETURNING id, title, slug, cover_image_path, chapter_count, created_ts, updated_ts
	`

	now := time.Now().Unix()

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	var n model.Novel
	if err := tx.QueryRow(stmt, novel.Title, finalSlug, novel.CoverImagePath, now, now).Scan(
		&n.ID,
		&n.Title,
		&n.Slug,
		&n.CoverImagePath,
		&n.ChapterCount,
		&n.CreatedTs,
		&n.UpdatedTs,
	); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.NovelCache.Store(n.ID, &n)
	return &n, nil
}

func (s *Store) UpdateNovel(update *model.UpdateNovel) (*model.Novel, error) {
	set, args := []string{"updated_ts = ?"}, []any{time.Now().Unix()}

	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.CoverImagePath; v != nil {
		set, args = append(set, "cover_image_path = ?"), append(args, *v)
	}
	args = append(args, update.NovelID)

	stmt := `UPDATE novels SET ` + strings.Join(set, ", ") + ` WHERE id = ?
		RETURNING id, title, slug, cover_image_path, chapter_count, created_ts, updated_ts`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var n model.Novel
	if err := s.db.QueryRow(stmt, args...).Scan(
		&n.ID,
		&n.Title,
		&n.Slug,
		&n.CoverImagePath,
		&n.ChapterCount,
		&n.CreatedTs,
		&n.UpdatedTs,
	); err != nil {
		return nil, err
	}

	s.NovelCache.Store(n.ID, &n)
	return &n, nil
}

// RemoveNovel removes the novel record AND its image directory from storage.
// Chapters, images, bookmarks and queued jobs go with it via ON DELETE CASCADE.
func (s *Store) RemoveNovel(novelID int, dataDir string) error {
	novel, err := s.GetNovel(&model.FindNovel{NovelID: &novelID})
	if err != nil {
		return errors.Wrap(err, "failed to find novel for deletion")
	}
	if novel == nil {
		log.Warn("Attempted to delete a novel that does not exist", zap.Int("novel_id", novelID))
		return nil // This is not an error, just nothing to do.
	}

	s.dbLock.Lock()
	tx, err := s.db.Begin()
	if err != nil {
		s.dbLock.Unlock()
		return err
	}

	if _, err := tx.Exec("DELETE FROM novels WHERE id = ?", novelID); err != nil {
		tx.Rollback()
		s.dbLock.Unlock()
		return errors.Wrap(err, "failed to delete from novels table")
	}
	if err := tx.Commit(); err != nil {
		s.dbLock.Unlock()
		return errors.Wrap(err, "failed to commit novel deletion")
	}
	s.dbLock.Unlock()

	s.NovelCache.Delete(novelID)

	// If database operations were successful, delete the image directory.
	if dataDir != "" && novel.Slug != "" {
		novelDir := filepath.Join(dataDir, "novels", novel.Slug)
		if err := os.RemoveAll(novelDir); err != nil {
			// Orphaned files on disk, needs to be logged.
			log.Error("Failed to delete novel directory after deleting DB record",
				zap.String("path", novelDir),
				zap.Error(err))
			return errors.Wrap(err, "failed to delete novel directory")
		}
	}

	log.Info("Novel deleted", zap.Int("novel_id", novelID))
	return nil
}

// UpdateChapterCount recomputes the denormalized chapter counter.
func (s *Store) UpdateChapterCount(novelID int) error {
	stmt := `
		UPDATE novels
		SET chapter_count = (SELECT COUNT(*) FROM chapters WHERE novel_id = ?),
		    updated_ts = ?
		WHERE id = ?
	`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	if _, err := s.db.Exec(stmt, novelID, time.Now().Unix(), novelID); err != nil {
		return err
	}

	s.NovelCache.Delete(novelID)
	return nil
}
