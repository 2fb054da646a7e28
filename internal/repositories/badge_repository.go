package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"merithub/internal/database"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// badgeRepository implements BadgeRepository over Postgres.
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const badgeColumns = `id, name, family, tier, threshold, points, is_active, created_at`

func scanBadge(scanner interface{ Scan(...interface{}) error }) (*models.Badge, error) {
	badge := &models.Badge{}
	err := scanner.Scan(
		&badge.ID,
		&badge.Name,
		&badge.Family,
		&badge.Tier,
		&badge.Threshold,
		&badge.Points,
		&badge.IsActive,
		&badge.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return badge, nil
}

// ===============================
// CATALOG
// ===============================

func (r *badgeRepository) ListBadges(ctx context.Context, activeOnly bool) ([]*models.Badge, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM badges
		WHERE ($1 = false OR is_active = true)
		ORDER BY family, threshold`, badgeColumns)

	rows, err := r.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}
	return badges, rows.Err()
}

func (r *badgeRepository) GetBadgeByID(ctx context.Context, id int64) (*models.Badge, error) {
	query := fmt.Sprintf(`SELECT %s FROM badges WHERE id = $1`, badgeColumns)

	badge, err := scanBadge(r.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get badge %d: %w", id, err)
	}
	return badge, nil
}

func (r *badgeRepository) ListFamilyBadges(ctx context.Context, family models.BadgeFamily) ([]*models.Badge, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM badges
		WHERE family = $1 AND is_active = true
		ORDER BY threshold`, badgeColumns)

	rows, err := r.QueryContext(ctx, query, family)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s badges: %w", family, err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}
	return badges, rows.Err()
}

// ===============================
// GRANTS
// ===============================

// InsertGrant relies on the unique grant index as the sole idempotency
// guard: a conflicting insert reports "already granted" instead of
// failing.
func (r *badgeRepository) InsertGrant(ctx context.Context, grant *models.UserBadge) (bool, error) {
	query := `
		INSERT INTO user_badges (profile_id, badge_id, year, journal_id, metric_at_grant, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (profile_id, badge_id, year, (COALESCE(journal_id, 0))) DO NOTHING
		RETURNING id`

	err := r.QueryRowContext(ctx, query,
		grant.ProfileID,
		grant.BadgeID,
		grant.Year,
		grant.JournalID,
		grant.MetricAtGrant,
		grant.GrantedAt,
	).Scan(&grant.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert badge grant: %w", err)
	}
	return true, nil
}

const grantColumns = `
	ub.id, ub.profile_id, ub.badge_id, ub.year, ub.journal_id, ub.metric_at_grant, ub.granted_at,
	b.id, b.name, b.family, b.tier, b.threshold, b.points, b.is_active, b.created_at`

func scanGrant(scanner interface{ Scan(...interface{}) error }) (*models.UserBadge, error) {
	grant := &models.UserBadge{Badge: &models.Badge{}}
	err := scanner.Scan(
		&grant.ID,
		&grant.ProfileID,
		&grant.BadgeID,
		&grant.Year,
		&grant.JournalID,
		&grant.MetricAtGrant,
		&grant.GrantedAt,
		&grant.Badge.ID,
		&grant.Badge.Name,
		&grant.Badge.Family,
		&grant.Badge.Tier,
		&grant.Badge.Threshold,
		&grant.Badge.Points,
		&grant.Badge.IsActive,
		&grant.Badge.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return grant, nil
}

func (r *badgeRepository) GetGrantByID(ctx context.Context, id int64) (*models.UserBadge, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.id = $1`, grantColumns)

	grant, err := scanGrant(r.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get badge grant %d: %w", id, err)
	}
	return grant, nil
}

func (r *badgeRepository) ListGrantsByProfile(ctx context.Context, profileID int64) ([]*models.UserBadge, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.profile_id = $1
		ORDER BY ub.granted_at DESC, ub.id DESC`, grantColumns)

	rows, err := r.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants for profile %d: %w", profileID, err)
	}
	defer rows.Close()

	var grants []*models.UserBadge
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge grant: %w", err)
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}

func (r *badgeRepository) CountHolders(ctx context.Context, badgeID int64) (int64, error) {
	var count int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT profile_id) FROM user_badges WHERE badge_id = $1`,
		badgeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count badge holders: %w", err)
	}
	return count, nil
}
