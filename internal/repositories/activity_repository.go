package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"merithub/internal/database"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// activityRepository implements ActivityRepository over Postgres.
type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.Manager, logger *zap.Logger) ActivityRepository {
	return &activityRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// INGESTION
// ===============================

func (r *activityRepository) InsertReview(ctx context.Context, activity *models.ReviewActivity) (bool, error) {
	query := `
		INSERT INTO review_activities (source_event_id, profile_id, journal_id, year, quality_score, turnaround_days, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (source_event_id) DO NOTHING
		RETURNING id`

	err := r.QueryRowContext(ctx, query,
		activity.SourceEventID,
		activity.ProfileID,
		activity.JournalID,
		activity.Year,
		activity.QualityScore,
		activity.TurnaroundDays,
		activity.CompletedAt,
	).Scan(&activity.ID)
	if err == sql.ErrNoRows {
		r.logger.Debug("Duplicate review event skipped",
			zap.String("source_event_id", activity.SourceEventID),
		)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert review activity: %w", err)
	}
	return true, nil
}

func (r *activityRepository) InsertSubmission(ctx context.Context, activity *models.SubmissionActivity) (bool, error) {
	query := `
		INSERT INTO submission_activities (source_event_id, profile_id, journal_id, year, status, citations, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (source_event_id) DO NOTHING
		RETURNING id`

	err := r.QueryRowContext(ctx, query,
		activity.SourceEventID,
		activity.ProfileID,
		activity.JournalID,
		activity.Year,
		activity.Status,
		activity.Citations,
		activity.DecidedAt,
	).Scan(&activity.ID)
	if err == sql.ErrNoRows {
		r.logger.Debug("Duplicate submission event skipped",
			zap.String("source_event_id", activity.SourceEventID),
		)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert submission activity: %w", err)
	}
	return true, nil
}

func (r *activityRepository) InsertEditorActivity(ctx context.Context, activity *models.EditorActivity) (bool, error) {
	query := `
		INSERT INTO editor_activities (source_event_id, profile_id, journal_id, year, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_event_id) DO NOTHING
		RETURNING id`

	err := r.QueryRowContext(ctx, query,
		activity.SourceEventID,
		activity.ProfileID,
		activity.JournalID,
		activity.Year,
		activity.PublishedAt,
	).Scan(&activity.ID)
	if err == sql.ErrNoRows {
		r.logger.Debug("Duplicate issue event skipped",
			zap.String("source_event_id", activity.SourceEventID),
		)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert editor activity: %w", err)
	}
	return true, nil
}

// ===============================
// AGGREGATION
// ===============================

// metricsQuery aggregates all three activity histories per profile.
// Set-based aggregation keeps the result independent of event arrival
// order. Positional params: $1 journal, $2 discipline, $3 country,
// $4 year, $5 since, $6 until, $7 profile (0 = all profiles).
const metricsQuery = `
	WITH reviews AS (
		SELECT r.profile_id,
		       COUNT(*)::int AS reviews_completed,
		       AVG(r.quality_score) AS avg_quality_score,
		       AVG(r.turnaround_days) AS avg_turnaround_days,
		       MIN(r.completed_at) AS first_activity_at
		FROM review_activities r
		JOIN journals j ON j.id = r.journal_id
		WHERE ($1::bigint IS NULL OR r.journal_id = $1)
		  AND ($2::text IS NULL OR j.discipline = $2)
		  AND ($3::text IS NULL OR j.country = $3)
		  AND ($4::int = 0 OR r.year = $4)
		  AND ($5::timestamptz IS NULL OR r.completed_at >= $5)
		  AND ($6::timestamptz IS NULL OR r.completed_at < $6)
		  AND ($7::bigint = 0 OR r.profile_id = $7)
		GROUP BY r.profile_id
	), submissions AS (
		SELECT s.profile_id,
		       COUNT(*)::int AS publications,
		       COALESCE(SUM(s.citations), 0)::int AS citations,
		       MIN(s.decided_at) AS first_activity_at
		FROM submission_activities s
		JOIN journals j ON j.id = s.journal_id
		WHERE s.status IN ('ACCEPTED', 'PUBLISHED')
		  AND ($1::bigint IS NULL OR s.journal_id = $1)
		  AND ($2::text IS NULL OR j.discipline = $2)
		  AND ($3::text IS NULL OR j.country = $3)
		  AND ($4::int = 0 OR s.year = $4)
		  AND ($5::timestamptz IS NULL OR s.decided_at >= $5)
		  AND ($6::timestamptz IS NULL OR s.decided_at < $6)
		  AND ($7::bigint = 0 OR s.profile_id = $7)
		GROUP BY s.profile_id
	), issues AS (
		SELECT e.profile_id,
		       COUNT(*)::int AS edited_issues,
		       MIN(e.published_at) AS first_activity_at
		FROM editor_activities e
		JOIN journals j ON j.id = e.journal_id
		WHERE ($1::bigint IS NULL OR e.journal_id = $1)
		  AND ($2::text IS NULL OR j.discipline = $2)
		  AND ($3::text IS NULL OR j.country = $3)
		  AND ($4::int = 0 OR e.year = $4)
		  AND ($5::timestamptz IS NULL OR e.published_at >= $5)
		  AND ($6::timestamptz IS NULL OR e.published_at < $6)
		  AND ($7::bigint = 0 OR e.profile_id = $7)
		GROUP BY e.profile_id
	)
	SELECT COALESCE(r.profile_id, s.profile_id, i.profile_id) AS profile_id,
	       COALESCE(r.reviews_completed, 0),
	       COALESCE(r.avg_quality_score, 0),
	       COALESCE(r.avg_turnaround_days, 0),
	       COALESCE(s.publications, 0),
	       COALESCE(s.citations, 0),
	       COALESCE(i.edited_issues, 0),
	       LEAST(r.first_activity_at, s.first_activity_at, i.first_activity_at)
	FROM reviews r
	FULL OUTER JOIN submissions s ON s.profile_id = r.profile_id
	FULL OUTER JOIN issues i ON i.profile_id = COALESCE(r.profile_id, s.profile_id)
	ORDER BY profile_id`

func (r *activityRepository) GetProfileMetrics(ctx context.Context, profileID int64, filter MetricsFilter) (*models.MetricBundle, error) {
	bundles, err := r.queryMetrics(ctx, filter, profileID)
	if err != nil {
		return nil, err
	}
	if len(bundles) == 0 {
		// A profile with no recorded activity aggregates to zeros.
		return &models.MetricBundle{ProfileID: profileID, Year: filter.Year}, nil
	}
	return bundles[0], nil
}

func (r *activityRepository) ListMetrics(ctx context.Context, filter MetricsFilter) ([]*models.MetricBundle, error) {
	return r.queryMetrics(ctx, filter, 0)
}

func (r *activityRepository) queryMetrics(ctx context.Context, filter MetricsFilter, profileID int64) ([]*models.MetricBundle, error) {
	rows, err := r.QueryContext(ctx, metricsQuery,
		filter.Scope.JournalID,
		filter.Scope.Discipline,
		filter.Scope.Country,
		filter.Year,
		filter.Since,
		filter.Until,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate metrics: %w", err)
	}
	defer rows.Close()

	var bundles []*models.MetricBundle
	for rows.Next() {
		bundle := &models.MetricBundle{Year: filter.Year}
		var firstActivity sql.NullTime

		if err := rows.Scan(
			&bundle.ProfileID,
			&bundle.ReviewsCompleted,
			&bundle.AvgQualityScore,
			&bundle.AvgTurnaroundDays,
			&bundle.Publications,
			&bundle.Citations,
			&bundle.EditedIssues,
			&firstActivity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metric bundle: %w", err)
		}
		if firstActivity.Valid {
			t := firstActivity.Time
			bundle.FirstActivityAt = &t
		}
		bundles = append(bundles, bundle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metric bundles: %w", err)
	}
	return bundles, nil
}
