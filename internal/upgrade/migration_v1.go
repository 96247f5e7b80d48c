package upgrade

import (
	"context"

	"gorm.io/gorm"
)

// InitialSchema 0 -> 1：创建笔记表与同步状态表
type InitialSchema struct{}

func (*InitialSchema) From() int { return 0 }

func (*InitialSchema) Description() string { return "initial schema" }

func (*InitialSchema) Up(ctx context.Context, tx *gorm.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			date TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_deleted_at ON notes(deleted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_date ON notes(date)`,
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	return execAll(ctx, tx, stmts)
}

func execAll(ctx context.Context, tx *gorm.DB, stmts []string) error {
	for _, stmt := range stmts {
		if err := tx.WithContext(ctx).Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
