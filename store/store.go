package store // import "github.com/Disya123/Books-Translate/store"

import (
	"database/sql"
	"sync"
)

type Store struct {
	db           *sql.DB
	dbLock       sync.Mutex // dbLock serializes writers, sqlite is single-writer
	NovelCache   sync.Map   // map[int]*model.Novel
	ChapterCache sync.Map   // map[int]*model.Chapter
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) DBStats() sql.DBStats {
	return s.db.Stats()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}
