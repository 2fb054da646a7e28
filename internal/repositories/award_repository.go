package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"merithub/internal/database"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// awardRepository implements AwardRepository over Postgres.
type awardRepository struct {
	*BaseRepository
}

// NewAwardRepository creates a new award repository
func NewAwardRepository(db *database.Manager, logger *zap.Logger) AwardRepository {
	return &awardRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const awardColumns = `id, award_type, year, journal_id, discipline, country, recipient_profile_id, citation, metrics, computed_at`

func scanAward(scanner interface{ Scan(...interface{}) error }) (*models.Award, error) {
	award := &models.Award{}
	var metrics []byte
	err := scanner.Scan(
		&award.ID,
		&award.AwardType,
		&award.Year,
		&award.JournalID,
		&award.Discipline,
		&award.Country,
		&award.RecipientProfileID,
		&award.Citation,
		&metrics,
		&award.ComputedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metrics) > 0 {
		award.Metrics = &models.MetricBundle{}
		if err := json.Unmarshal(metrics, award.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode award metrics: %w", err)
		}
	}
	return award, nil
}

func (r *awardRepository) GetAward(ctx context.Context, awardType models.AwardType, year int, journalID int64, scope models.Scope) (*models.Award, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM awards
		WHERE award_type = $1 AND year = $2 AND journal_id = $3
		  AND COALESCE(discipline, '') = COALESCE($4::text, '')
		  AND COALESCE(country, '') = COALESCE($5::text, '')`, awardColumns)

	award, err := scanAward(r.QueryRowContext(ctx, query,
		awardType, year, journalID, scope.Discipline, scope.Country))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get award: %w", err)
	}
	return award, nil
}

func (r *awardRepository) GetAwardByID(ctx context.Context, id int64) (*models.Award, error) {
	query := fmt.Sprintf(`SELECT %s FROM awards WHERE id = $1`, awardColumns)

	award, err := scanAward(r.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get award %d: %w", id, err)
	}
	return award, nil
}

// SaveAward inserts the computed award. The unique award key memoizes the
// computation; a lost insert race reports false so the caller re-reads
// the winner's row. With replace the stored row for the key is dropped
// first inside the same transaction.
func (r *awardRepository) SaveAward(ctx context.Context, award *models.Award, replace bool) (bool, error) {
	metrics, err := json.Marshal(award.Metrics)
	if err != nil {
		return false, fmt.Errorf("failed to encode award metrics: %w", err)
	}

	inserted := false
	err = r.WithTransaction(ctx, func(tx *sql.Tx) error {
		if replace {
			_, err := tx.ExecContext(ctx, `
				DELETE FROM awards
				WHERE award_type = $1 AND year = $2 AND journal_id = $3
				  AND COALESCE(discipline, '') = COALESCE($4::text, '')
				  AND COALESCE(country, '') = COALESCE($5::text, '')`,
				award.AwardType, award.Year, award.JournalID,
				award.Discipline, award.Country,
			)
			if err != nil {
				return fmt.Errorf("failed to drop prior award: %w", err)
			}
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO awards (award_type, year, journal_id, discipline, country, recipient_profile_id, citation, metrics, computed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (award_type, year, journal_id, (COALESCE(discipline, '')), (COALESCE(country, ''))) DO NOTHING
			RETURNING id`,
			award.AwardType,
			award.Year,
			award.JournalID,
			award.Discipline,
			award.Country,
			award.RecipientProfileID,
			award.Citation,
			metrics,
			award.ComputedAt,
		).Scan(&award.ID)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to insert award: %w", err)
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if inserted {
		r.logger.Info("Award materialized",
			zap.Int64("award_id", award.ID),
			zap.String("award_type", string(award.AwardType)),
			zap.Int("year", award.Year),
			zap.Int64("journal_id", award.JournalID),
		)
	}
	return inserted, nil
}

func (r *awardRepository) ListAwardsByYear(ctx context.Context, year int) ([]*models.Award, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM awards
		WHERE ($1 = 0 OR year = $1)
		ORDER BY year DESC, award_type, journal_id`, awardColumns)

	rows, err := r.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	defer rows.Close()

	var awards []*models.Award
	for rows.Next() {
		award, err := scanAward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan award: %w", err)
		}
		awards = append(awards, award)
	}
	return awards, rows.Err()
}
