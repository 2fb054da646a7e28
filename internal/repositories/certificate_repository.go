package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"merithub/internal/database"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// Sentinel errors surfaced from certificate unique constraints. The
// issuer reacts differently to each: code collisions are re-rolled,
// subject collisions resolve to the existing certificate.
var (
	ErrDuplicateCode           = errors.New("verification code already in use")
	ErrDuplicateNumber         = errors.New("certificate number already in use")
	ErrSubjectAlreadyCertified = errors.New("subject already has a certificate")
)

// certificateRepository implements CertificateRepository over Postgres.
type certificateRepository struct {
	*BaseRepository
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *database.Manager, logger *zap.Logger) CertificateRepository {
	return &certificateRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// NextSequence reserves the next per-year number with a single atomic
// upsert. Two concurrent issuers can never observe the same value.
func (r *certificateRepository) NextSequence(ctx context.Context, prefix string, year int) (int64, error) {
	var value int64
	err := r.QueryRowContext(ctx, `
		INSERT INTO certificate_sequences (prefix, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_value = certificate_sequences.last_value + 1
		RETURNING last_value`,
		prefix, year,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve certificate sequence: %w", err)
	}
	return value, nil
}

const certificateColumns = `id, certificate_number, verification_code, title, recipient_profile_id, recipient_name, journal_id, award_id, user_badge_id, is_public, issued_at`

func scanCertificate(scanner interface{ Scan(...interface{}) error }) (*models.Certificate, error) {
	cert := &models.Certificate{}
	err := scanner.Scan(
		&cert.ID,
		&cert.CertificateNumber,
		&cert.VerificationCode,
		&cert.Title,
		&cert.RecipientProfileID,
		&cert.RecipientName,
		&cert.JournalID,
		&cert.AwardID,
		&cert.UserBadgeID,
		&cert.IsPublic,
		&cert.IssuedAt,
	)
	if err != nil {
		return nil, err
	}
	return cert, nil
}

func (r *certificateRepository) Insert(ctx context.Context, cert *models.Certificate) error {
	err := r.QueryRowContext(ctx, `
		INSERT INTO certificates (certificate_number, verification_code, title, recipient_profile_id, recipient_name, journal_id, award_id, user_badge_id, is_public, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		cert.CertificateNumber,
		cert.VerificationCode,
		cert.Title,
		cert.RecipientProfileID,
		cert.RecipientName,
		cert.JournalID,
		cert.AwardID,
		cert.UserBadgeID,
		cert.IsPublic,
		cert.IssuedAt,
	).Scan(&cert.ID)
	if err == nil {
		return nil
	}

	switch {
	case IsUniqueViolation(err, "certificates_verification_code_key"):
		return ErrDuplicateCode
	case IsUniqueViolation(err, "certificates_certificate_number_key"):
		return ErrDuplicateNumber
	case IsUniqueViolation(err, "certificates_award_id_uidx"),
		IsUniqueViolation(err, "certificates_user_badge_id_uidx"):
		return ErrSubjectAlreadyCertified
	}
	return fmt.Errorf("failed to insert certificate: %w", err)
}

func (r *certificateRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Certificate, error) {
	query := fmt.Sprintf(`SELECT %s FROM certificates WHERE %s = $1`, certificateColumns, where)

	cert, err := scanCertificate(r.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate by %s: %w", where, err)
	}
	return cert, nil
}

func (r *certificateRepository) GetByID(ctx context.Context, id int64) (*models.Certificate, error) {
	return r.getOne(ctx, "id", id)
}

func (r *certificateRepository) GetByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	return r.getOne(ctx, "certificate_number", number)
}

func (r *certificateRepository) GetByVerificationCode(ctx context.Context, code string) (*models.Certificate, error) {
	return r.getOne(ctx, "verification_code", code)
}

func (r *certificateRepository) GetByAwardID(ctx context.Context, awardID int64) (*models.Certificate, error) {
	return r.getOne(ctx, "award_id", awardID)
}

func (r *certificateRepository) GetByUserBadgeID(ctx context.Context, userBadgeID int64) (*models.Certificate, error) {
	return r.getOne(ctx, "user_badge_id", userBadgeID)
}

func (r *certificateRepository) ListByProfile(ctx context.Context, profileID int64) ([]*models.Certificate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM certificates
		WHERE recipient_profile_id = $1
		ORDER BY issued_at DESC, id DESC`, certificateColumns)

	rows, err := r.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates for profile %d: %w", profileID, err)
	}
	defer rows.Close()

	var certs []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	return certs, rows.Err()
}
