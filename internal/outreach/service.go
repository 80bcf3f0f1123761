package outreach

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/journal"
	"github.com/JakeFAU/seo-reporter/internal/metrics"
	"github.com/JakeFAU/seo-reporter/internal/reporter"
	"github.com/JakeFAU/seo-reporter/internal/webhook"
)

// Poster sends a JSON payload to a webhook.
type Poster interface {
	Post(ctx context.Context, endpoint webhook.Endpoint, payload any) (webhook.Response, error)
}

// Request identifies the lead to contact and the audit to attach.
type Request struct {
	LeadEmail    string `json:"leadEmail"`
	BusinessName string `json:"businessName"`
	WebsiteURL   string `json:"websiteUrl"`
	AuditContent string `json:"auditContent"`
}

type emailPayload struct {
	To           string `json:"to"`
	Subject      string `json:"subject"`
	TextBody     string `json:"textBody"`
	BusinessName string `json:"businessName"`
	WebsiteURL   string `json:"websiteUrl"`
	AuditContent string `json:"auditContent"`
	AgencyName   string `json:"agencyName"`
	AgencyEmail  string `json:"agencyEmail"`
}

// Service sends outreach emails through the email webhook.
type Service struct {
	poster   Poster
	endpoint webhook.Endpoint
	journal  *journal.Journal
	logger   *zap.Logger
}

// NewService constructs a Service. jrnl may be nil.
func NewService(poster Poster, endpoint webhook.Endpoint, jrnl *journal.Journal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{poster: poster, endpoint: endpoint, journal: jrnl, logger: logger}
}

// Send composes the email on behalf of sender and forwards it, together with
// the audit content for the attachment, to the email webhook.
func (s *Service) Send(ctx context.Context, sender reporter.User, req Request) error {
	if req.LeadEmail == "" || req.BusinessName == "" {
		return reporter.InvalidInput("Lead email and business name are required")
	}

	email := Compose(req.BusinessName, req.WebsiteURL, sender.Name)
	_, err := s.poster.Post(ctx, s.endpoint, emailPayload{
		To:           req.LeadEmail,
		Subject:      email.Subject,
		TextBody:     email.Body,
		BusinessName: req.BusinessName,
		WebsiteURL:   req.WebsiteURL,
		AuditContent: req.AuditContent,
		AgencyName:   sender.Name,
		AgencyEmail:  sender.Email,
	})
	if err != nil {
		metrics.ObserveLeadEmail("failed")
		return err
	}
	metrics.ObserveLeadEmail("sent")
	s.logger.Info("outreach email handed off", zap.String("business_name", req.BusinessName), zap.String("user_id", sender.ID))

	s.journal.Publish(ctx, journal.Event{
		Type:      journal.EventLeadEmailSent,
		UserID:    sender.ID,
		Website:   req.WebsiteURL,
		Recipient: req.LeadEmail,
	})
	return nil
}
