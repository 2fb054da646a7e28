package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"merithub/internal/config"
	"merithub/internal/events"
	"merithub/internal/models"
	"merithub/internal/repositories"
	"merithub/internal/validation"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// codeAlphabet is the verification-code character set: uppercase
// alphanumerics only, so codes survive manual transcription.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// certificateService implements CertificateService.
type certificateService struct {
	certificates repositories.CertificateRepository
	awards       repositories.AwardRepository
	badges       repositories.BadgeRepository
	journals     repositories.JournalRepository
	bus          events.EventBus
	engine       config.EngineConfig
	logger       *zap.Logger
}

// NewCertificateService creates a new certificate service
func NewCertificateService(
	certificates repositories.CertificateRepository,
	awards repositories.AwardRepository,
	badges repositories.BadgeRepository,
	journals repositories.JournalRepository,
	bus events.EventBus,
	engine config.EngineConfig,
	logger *zap.Logger,
) CertificateService {
	return &certificateService{
		certificates: certificates,
		awards:       awards,
		badges:       badges,
		journals:     journals,
		bus:          bus,
		engine:       engine,
		logger:       logger,
	}
}

// ===============================
// ISSUANCE
// ===============================

func (s *certificateService) Issue(ctx context.Context, req *IssueCertificateRequest) (*models.Certificate, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid certificate request", err)
	}
	if (req.AwardID == nil) == (req.UserBadgeID == nil) {
		return nil, NewValidationError("exactly one of award_id or user_badge_id is required", nil)
	}

	cert, existing, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Idempotent per subject: the first issuance is canonical.
		return existing, nil
	}

	year := time.Now().UTC().Year()
	seq, err := s.certificates.NextSequence(ctx, s.engine.CertificatePrefix, year)
	if err != nil {
		return nil, NewInternalError("failed to reserve certificate number")
	}
	cert.CertificateNumber = fmt.Sprintf("%s-%d-%0*d", s.engine.CertificatePrefix, year, s.engine.CertificateSeqDigits, seq)
	cert.IssuedAt = time.Now().UTC()

	if err := s.insertWithFreshCode(ctx, cert); err != nil {
		var serviceErr *ServiceError
		if errors.As(err, &serviceErr) {
			return nil, serviceErr
		}
		if errors.Is(err, repositories.ErrSubjectAlreadyCertified) {
			// Lost the per-subject race; the winner's certificate stands.
			return s.subjectCertificate(ctx, req)
		}
		return nil, NewInternalError("failed to issue certificate")
	}

	s.logger.Info("Certificate issued",
		zap.Int64("certificate_id", cert.ID),
		zap.String("certificate_number", cert.CertificateNumber),
		zap.Int64("recipient_profile_id", cert.RecipientProfileID),
	)
	if s.bus != nil {
		event := events.NewCertificateIssuedEvent(cert.ID, cert.CertificateNumber, cert.RecipientProfileID)
		if err := s.bus.PublishAsync(ctx, event); err != nil {
			s.logger.Warn("Failed to publish certificate-issued event", zap.Error(err))
		}
	}
	return cert, nil
}

// prepare resolves the subject into an unsaved certificate, or returns
// the already-issued certificate for that subject.
func (s *certificateService) prepare(ctx context.Context, req *IssueCertificateRequest) (*models.Certificate, *models.Certificate, error) {
	if req.AwardID != nil {
		award, err := s.awards.GetAwardByID(ctx, *req.AwardID)
		if err != nil {
			return nil, nil, NewInternalError("failed to load award")
		}
		if award == nil {
			return nil, nil, NewNotFoundError(fmt.Sprintf("award %d not found", *req.AwardID))
		}

		existing, err := s.certificates.GetByAwardID(ctx, award.ID)
		if err != nil {
			return nil, nil, NewInternalError("failed to check existing certificate")
		}
		if existing != nil {
			return nil, existing, nil
		}

		journalID := award.JournalID
		return &models.Certificate{
			Title:              fmt.Sprintf("%s %d", awardTitle(award.AwardType), award.Year),
			RecipientProfileID: award.RecipientProfileID,
			RecipientName:      req.RecipientName,
			JournalID:          &journalID,
			AwardID:            &award.ID,
			IsPublic:           req.IsPublic,
		}, nil, nil
	}

	grant, err := s.badges.GetGrantByID(ctx, *req.UserBadgeID)
	if err != nil {
		return nil, nil, NewInternalError("failed to load badge grant")
	}
	if grant == nil {
		return nil, nil, NewNotFoundError(fmt.Sprintf("badge grant %d not found", *req.UserBadgeID))
	}

	existing, err := s.certificates.GetByUserBadgeID(ctx, grant.ID)
	if err != nil {
		return nil, nil, NewInternalError("failed to check existing certificate")
	}
	if existing != nil {
		return nil, existing, nil
	}

	return &models.Certificate{
		Title:              fmt.Sprintf("%s %d", grant.Badge.Name, grant.Year),
		RecipientProfileID: grant.ProfileID,
		RecipientName:      req.RecipientName,
		JournalID:          grant.JournalID,
		UserBadgeID:        &grant.ID,
		IsPublic:           req.IsPublic,
	}, nil, nil
}

// insertWithFreshCode rolls a verification code and inserts, re-rolling
// on a code collision with bounded backed-off attempts. Exhausting the
// budget is fatal and escalated; the code space is not supposed to fill.
func (s *certificateService) insertWithFreshCode(ctx context.Context, cert *models.Certificate) error {
	retries := s.engine.VerificationCodeRetries
	attempts := 0

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries-1)), ctx)
	err := backoff.Retry(func() error {
		attempts++
		code, err := generateVerificationCode(s.engine.VerificationCodeLength)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to generate verification code: %w", err))
		}
		cert.VerificationCode = code

		err = s.certificates.Insert(ctx, cert)
		if errors.Is(err, repositories.ErrDuplicateCode) {
			s.logger.Warn("Verification code collision, re-rolling",
				zap.Int("attempt", attempts),
				zap.String("certificate_number", cert.CertificateNumber),
			)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, policy)

	if errors.Is(err, repositories.ErrDuplicateCode) {
		s.logger.Error("Verification code space exhausted",
			zap.String("alert", "identifier_exhaustion"),
			zap.Int("attempts", attempts),
			zap.Int("code_length", s.engine.VerificationCodeLength),
		)
		return NewIdentifierExhaustionError(attempts, err)
	}
	return err
}

func (s *certificateService) subjectCertificate(ctx context.Context, req *IssueCertificateRequest) (*models.Certificate, error) {
	var (
		cert *models.Certificate
		err  error
	)
	if req.AwardID != nil {
		cert, err = s.certificates.GetByAwardID(ctx, *req.AwardID)
	} else {
		cert, err = s.certificates.GetByUserBadgeID(ctx, *req.UserBadgeID)
	}
	if err != nil || cert == nil {
		return nil, NewInternalError("failed to load certificate after issuance race")
	}
	return cert, nil
}

// generateVerificationCode draws a fixed-length code from crypto/rand.
func generateVerificationCode(length int) (string, error) {
	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func awardTitle(awardType models.AwardType) string {
	switch awardType {
	case models.AwardBestReviewer:
		return "Best Reviewer"
	case models.AwardResearcherOfTheYear:
		return "Researcher of the Year"
	case models.AwardBestEditor:
		return "Best Editor"
	}
	return string(awardType)
}

// ===============================
// VERIFICATION
// ===============================

// Verify resolves a public verification code. An unknown or malformed
// code yields an invalid result, never an error; the endpoint must not
// leak whether a code is near-valid. A certificate the recipient has not
// made public is indistinguishable from an unknown code.
func (s *certificateService) Verify(ctx context.Context, code string) (*models.VerificationResult, error) {
	if len(code) != s.engine.VerificationCodeLength {
		return &models.VerificationResult{Valid: false}, nil
	}

	cert, err := s.certificates.GetByVerificationCode(ctx, code)
	if err != nil {
		return nil, NewInternalError("failed to look up verification code")
	}
	if cert == nil || !cert.IsPublic {
		return &models.VerificationResult{Valid: false}, nil
	}

	result := &models.VerificationResult{
		Valid:             true,
		CertificateNumber: cert.CertificateNumber,
		Title:             cert.Title,
		RecipientName:     cert.RecipientName,
		IssuedAt:          cert.IssuedAt,
	}
	if cert.JournalID != nil {
		if journal, err := s.journals.GetByID(ctx, *cert.JournalID); err == nil && journal != nil {
			result.JournalName = journal.Name
		}
	}
	return result, nil
}

func (s *certificateService) ListByProfile(ctx context.Context, profileID int64) ([]*models.Certificate, error) {
	if profileID <= 0 {
		return nil, NewValidationError("profile id must be positive", nil)
	}
	certs, err := s.certificates.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, NewInternalError("failed to list certificates")
	}
	return certs, nil
}
