// Package audit requests SEO audit reports from the audit webhook and keeps a
// copy for the requesting user when they have an account.
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/journal"
	"github.com/JakeFAU/seo-reporter/internal/metrics"
	"github.com/JakeFAU/seo-reporter/internal/reporter"
	"github.com/JakeFAU/seo-reporter/internal/webhook"
)

// EmptyReportPlaceholder replaces a blank webhook response.
const EmptyReportPlaceholder = "<p>The audit was generated but the report content was empty.</p>"

// Poster sends a JSON payload to a webhook.
type Poster interface {
	Post(ctx context.Context, endpoint webhook.Endpoint, payload any) (webhook.Response, error)
}

// Store is what the audit service needs from persistence.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (reporter.User, error)
	CreateAudit(ctx context.Context, audit reporter.Audit) error
}

// Request is an audit request.
type Request struct {
	Website string `json:"website"`
	Email   string `json:"email"`
}

// Result carries the report and, when stored, the audit row.
type Result struct {
	Report string
	Audit  *reporter.Audit
}

// Service generates and stores audits.
type Service struct {
	poster   Poster
	endpoint webhook.Endpoint
	store    Store
	ids      reporter.IDGenerator
	clock    reporter.Clock
	journal  *journal.Journal
	logger   *zap.Logger
}

// NewService constructs a Service. jrnl may be nil.
func NewService(
	poster Poster,
	endpoint webhook.Endpoint,
	store Store,
	ids reporter.IDGenerator,
	clock reporter.Clock,
	jrnl *journal.Journal,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		poster:   poster,
		endpoint: endpoint,
		store:    store,
		ids:      ids,
		clock:    clock,
		journal:  jrnl,
		logger:   logger,
	}
}

// Generate fetches a report for req.Website. The report is stored only when a
// user with exactly req.Email exists; otherwise it is returned unsaved.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	if req.Website == "" || req.Email == "" {
		return Result{}, reporter.InvalidInput("Website and email are required")
	}

	resp, err := s.poster.Post(ctx, s.endpoint, req)
	if err != nil {
		return Result{}, err
	}
	report := strings.TrimSpace(string(resp.Body))
	if report == "" {
		report = EmptyReportPlaceholder
	}

	user, err := s.store.FindUserByEmail(ctx, req.Email)
	if errors.Is(err, reporter.ErrNotFound) {
		s.logger.Info("no account for audit email, report not stored", zap.String("website", req.Website))
		metrics.ObserveAudit("skipped")
		return Result{Report: report}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("find user: %w", err)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("generate audit id: %w", err)
	}
	stored := reporter.Audit{
		ID:            id,
		UserID:        user.ID,
		WebsiteURL:    req.Website,
		ReportContent: report,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.store.CreateAudit(ctx, stored); err != nil {
		return Result{}, fmt.Errorf("store audit: %w", err)
	}
	metrics.ObserveAudit("stored")
	s.logger.Info("audit stored", zap.String("audit_id", id), zap.String("user_id", user.ID))

	blobURI := s.journal.Archive(ctx, "audits", id, "html", "text/html; charset=utf-8", []byte(report))
	s.journal.Publish(ctx, journal.Event{
		Type:    journal.EventAuditGenerated,
		UserID:  user.ID,
		AuditID: id,
		Website: req.Website,
		BlobURI: blobURI,
	})
	return Result{Report: report, Audit: &stored}, nil
}
