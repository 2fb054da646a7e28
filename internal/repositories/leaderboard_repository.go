package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"merithub/internal/database"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// leaderboardRepository implements LeaderboardRepository over Postgres.
type leaderboardRepository struct {
	*BaseRepository
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository(db *database.Manager, logger *zap.Logger) LeaderboardRepository {
	return &leaderboardRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// snapshotLockKey builds the advisory-lock key for one snapshot identity.
func snapshotLockKey(category models.LeaderboardCategory, period models.LeaderboardPeriod, periodEnd time.Time, scope models.Scope) string {
	return fmt.Sprintf("leaderboard:%s:%s:%s:%s",
		category, period, periodEnd.Format("2006-01-02"), scope.Key())
}

// ReplaceSnapshot swaps the stored snapshot for the key inside one
// transaction. A transaction-scoped advisory lock serializes concurrent
// rebuilds of the same key; readers never observe a half-built snapshot.
func (r *leaderboardRepository) ReplaceSnapshot(ctx context.Context, snapshot *models.LeaderboardSnapshot) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		lockKey := snapshotLockKey(snapshot.Category, snapshot.Period, snapshot.PeriodEnd, snapshot.Scope)
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("failed to acquire snapshot lock: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			DELETE FROM leaderboard_snapshots
			WHERE category = $1 AND period = $2 AND period_end = $3
			  AND COALESCE(journal_id, 0) = COALESCE($4::bigint, 0)
			  AND COALESCE(discipline, '') = COALESCE($5::text, '')
			  AND COALESCE(country, '') = COALESCE($6::text, '')`,
			snapshot.Category,
			snapshot.Period,
			snapshot.PeriodEnd,
			snapshot.Scope.JournalID,
			snapshot.Scope.Discipline,
			snapshot.Scope.Country,
		)
		if err != nil {
			return fmt.Errorf("failed to drop prior snapshot: %w", err)
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO leaderboard_snapshots (category, period, period_end, journal_id, discipline, country, built_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			snapshot.Category,
			snapshot.Period,
			snapshot.PeriodEnd,
			snapshot.Scope.JournalID,
			snapshot.Scope.Discipline,
			snapshot.Scope.Country,
			snapshot.BuiltAt,
		).Scan(&snapshot.ID)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		if len(snapshot.Entries) == 0 {
			return nil
		}

		placeholders := make([]string, 0, len(snapshot.Entries))
		args := make([]interface{}, 0, len(snapshot.Entries)*5)
		argIndex := 1
		for _, entry := range snapshot.Entries {
			entry.SnapshotID = snapshot.ID

			metrics, err := json.Marshal(entry.Metrics)
			if err != nil {
				return fmt.Errorf("failed to encode entry metrics: %w", err)
			}

			placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
				argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4))
			args = append(args, snapshot.ID, entry.Rank, entry.ProfileID, entry.Score, metrics)
			argIndex += 5
		}

		query := fmt.Sprintf(`
			INSERT INTO leaderboard_entries (snapshot_id, rank, profile_id, score, metrics)
			VALUES %s`, strings.Join(placeholders, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert snapshot entries: %w", err)
		}

		r.logger.Info("Leaderboard snapshot replaced",
			zap.Int64("snapshot_id", snapshot.ID),
			zap.String("key", lockKey),
			zap.Int("entries", len(snapshot.Entries)),
		)
		return nil
	})
}

func (r *leaderboardRepository) GetSnapshot(ctx context.Context, category models.LeaderboardCategory, period models.LeaderboardPeriod, periodEnd time.Time, scope models.Scope) (*models.LeaderboardSnapshot, error) {
	snapshot := &models.LeaderboardSnapshot{Scope: scope}
	err := r.QueryRowContext(ctx, `
		SELECT id, category, period, period_end, built_at
		FROM leaderboard_snapshots
		WHERE category = $1 AND period = $2 AND period_end = $3
		  AND COALESCE(journal_id, 0) = COALESCE($4::bigint, 0)
		  AND COALESCE(discipline, '') = COALESCE($5::text, '')
		  AND COALESCE(country, '') = COALESCE($6::text, '')`,
		category, period, periodEnd,
		scope.JournalID, scope.Discipline, scope.Country,
	).Scan(&snapshot.ID, &snapshot.Category, &snapshot.Period, &snapshot.PeriodEnd, &snapshot.BuiltAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	rows, err := r.QueryContext(ctx, `
		SELECT id, snapshot_id, rank, profile_id, score, metrics
		FROM leaderboard_entries
		WHERE snapshot_id = $1
		ORDER BY rank`, snapshot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry := &models.LeaderboardEntry{}
		var metrics []byte
		if err := rows.Scan(&entry.ID, &entry.SnapshotID, &entry.Rank, &entry.ProfileID, &entry.Score, &metrics); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot entry: %w", err)
		}
		if len(metrics) > 0 {
			entry.Metrics = &models.MetricBundle{}
			if err := json.Unmarshal(metrics, entry.Metrics); err != nil {
				return nil, fmt.Errorf("failed to decode entry metrics: %w", err)
			}
		}
		snapshot.Entries = append(snapshot.Entries, entry)
	}
	return snapshot, rows.Err()
}
