package store

import (
	"database/sql"
	"time"

	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"go.uber.org/zap"
)

// GetCachedTranslation returns the memoized translation for the chapter and
// target code, or nil when the pair was never translated.
func (s *Store) GetCachedTranslation(chapterID int, targetCode string) (*model.TranslationCache, error) {
	query := `
		SELECT id, chapter_id, source_lang, target_lang, target_code, translated_content, created_ts
		FROM translation_cache
		WHERE chapter_id = ? AND target_code = ?
	`

	var tc model.TranslationCache
	if err := s.db.QueryRow(query, chapterID, targetCode).Scan(
		&tc.ID,
		&tc.ChapterID,
		&tc.SourceLang,
		&tc.TargetLang,
		&tc.TargetCode,
		&tc.TranslatedContent,
		&tc.CreatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &tc, nil
}

func (s *Store) SaveCachedTranslation(cache *model.TranslationCache) (*model.TranslationCache, error) {
	stmt := `
		INSERT OR REPLACE INTO translation_cache
			(chapter_id, source_lang, target_lang, target_code, translated_content, created_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, chapter_id, source_lang, target_lang, target_code, translated_content, created_ts
	`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var tc model.TranslationCache
	if err := s.db.QueryRow(stmt,
		cache.ChapterID,
		cache.SourceLang,
		cache.TargetLang,
		cache.TargetCode,
		cache.TranslatedContent,
		time.Now().Unix(),
	).Scan(
		&tc.ID,
		&tc.ChapterID,
		&tc.SourceLang,
		&tc.TargetLang,
		&tc.TargetCode,
		&tc.TranslatedContent,
		&tc.CreatedTs,
	); err != nil {
		return nil, err
	}

	return &tc, nil
}

// GetTranslatedChapterIDs lists chapters of a novel that already have a cache
// entry for the target code.
func (s *Store) GetTranslatedChapterIDs(novelID int, targetCode string) ([]int, error) {
	query := `
		SELECT tc.chapter_id
		FROM translation_cache tc
		JOIN chapters c ON tc.chapter_id = c.id
		WHERE c.novel_id = ? AND tc.target_code = ?
	`

	rows, err := s.db.Query(query, novelID, targetCode)
	if err != nil {
		log.Error("Failed to query translated chapters", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (s *Store) ClearTranslationCache() error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.db.Exec("DELETE FROM translation_cache")
	return err
}
