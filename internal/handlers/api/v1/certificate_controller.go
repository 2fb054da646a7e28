package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"merithub/internal/middleware"
	"merithub/internal/response"
	"merithub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CertificateController issues certificates and serves the public
// verification endpoint.
type CertificateController struct {
	services        *services.Collection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewCertificateController creates a new certificate controller
func NewCertificateController(serviceCollection *services.Collection, logger *zap.Logger) *CertificateController {
	return &CertificateController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: response.NewBuilder(logger),
	}
}

// Issue handles POST /api/v1/certificates
func (c *CertificateController) Issue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("endpoint", "issue_certificate"),
	)

	var req services.IssueCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.Error(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	cert, err := c.services.Certificate.Issue(ctx, &req)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	c.responseBuilder.Created(w, r, cert)
}

// ListProfileCertificates handles GET /api/v1/profiles/{profileID}/certificates
func (c *CertificateController) ListProfileCertificates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	profileID, err := strconv.ParseInt(chi.URLParam(r, "profileID"), 10, 64)
	if err != nil {
		c.responseBuilder.Error(w, r, services.NewValidationError("Invalid profile ID", err))
		return
	}

	certs, err := c.services.Certificate.ListByProfile(ctx, profileID)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	c.responseBuilder.Success(w, r, certs)
}

// Verify handles GET /verify/{code}. The endpoint is public and always
// answers in the 200 family; an unknown code is a valid question with a
// negative answer.
func (c *CertificateController) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	code := chi.URLParam(r, "code")
	result, err := c.services.Certificate.Verify(ctx, code)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	c.responseBuilder.Success(w, r, result)
}
