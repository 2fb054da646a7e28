package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"merithub/internal/database"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// journalRepository implements JournalRepository over Postgres.
type journalRepository struct {
	*BaseRepository
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *database.Manager, logger *zap.Logger) JournalRepository {
	return &journalRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *journalRepository) GetByID(ctx context.Context, id int64) (*models.Journal, error) {
	journal := &models.Journal{}
	err := r.QueryRowContext(ctx, `
		SELECT id, name, discipline, country, is_active, created_at
		FROM journals WHERE id = $1`, id,
	).Scan(
		&journal.ID,
		&journal.Name,
		&journal.Discipline,
		&journal.Country,
		&journal.IsActive,
		&journal.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal %d: %w", id, err)
	}
	return journal, nil
}

func (r *journalRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM journals WHERE id = $1 AND is_active = true)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check journal %d: %w", id, err)
	}
	return exists, nil
}

func (r *journalRepository) List(ctx context.Context) ([]*models.Journal, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT id, name, discipline, country, is_active, created_at
		FROM journals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()

	var journals []*models.Journal
	for rows.Next() {
		journal := &models.Journal{}
		if err := rows.Scan(
			&journal.ID,
			&journal.Name,
			&journal.Discipline,
			&journal.Country,
			&journal.IsActive,
			&journal.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		journals = append(journals, journal)
	}
	return journals, rows.Err()
}
