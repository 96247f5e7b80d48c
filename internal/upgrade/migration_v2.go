package upgrade

import (
	"context"

	"gorm.io/gorm"
)

// SubjectDateRename 1 -> 2：date 列改名为 subject_date，并补充 created_at 索引
type SubjectDateRename struct{}

func (*SubjectDateRename) From() int { return 1 }

func (*SubjectDateRename) Description() string { return "rename notes.date to subject_date" }

func (*SubjectDateRename) Up(ctx context.Context, tx *gorm.DB) error {
	return execAll(ctx, tx, []string{
		`DROP INDEX IF EXISTS idx_notes_date`,
		`ALTER TABLE notes RENAME COLUMN date TO subject_date`,
		`CREATE INDEX IF NOT EXISTS idx_notes_subject_date ON notes(subject_date)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at)`,
	})
}
