package leads

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/journal"
	"github.com/JakeFAU/seo-reporter/internal/metrics"
	"github.com/JakeFAU/seo-reporter/internal/payload"
	"github.com/JakeFAU/seo-reporter/internal/reporter"
	"github.com/JakeFAU/seo-reporter/internal/webhook"
)

// Poster sends a JSON payload to a webhook.
type Poster interface {
	Post(ctx context.Context, endpoint webhook.Endpoint, payload any) (webhook.Response, error)
}

// ScrapeRequest is the caller's lead search.
type ScrapeRequest struct {
	SearchTerms   string `json:"searchTerms"`
	LocationQuery string `json:"locationQuery"`
}

type scrapePayload struct {
	CustomerEmail   string `json:"customerEmail"`
	SearchTerms     string `json:"searchTerms"`
	LocationQuery   string `json:"locationQuery"`
	ScrapeSessionID string `json:"scrapeSessionId"`
}

// Service runs a lead search end to end.
type Service struct {
	poster    Poster
	endpoint  webhook.Endpoint
	sessions  reporter.IDGenerator
	persister *Persister
	journal   *journal.Journal
	logger    *zap.Logger
}

// NewService constructs a Service. journal may be nil.
func NewService(
	poster Poster,
	endpoint webhook.Endpoint,
	sessions reporter.IDGenerator,
	persister *Persister,
	jrnl *journal.Journal,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		poster:    poster,
		endpoint:  endpoint,
		sessions:  sessions,
		persister: persister,
		journal:   jrnl,
		logger:    logger,
	}
}

// Scrape asks the lead generator for leads matching req on behalf of user and
// stores whatever it returns under a fresh scrape session.
func (s *Service) Scrape(ctx context.Context, user reporter.User, req ScrapeRequest) (Outcome, error) {
	if req.SearchTerms == "" || req.LocationQuery == "" {
		return Outcome{}, reporter.InvalidInput("Search terms and location are required")
	}

	sessionID, err := s.sessions.NewID()
	if err != nil {
		return Outcome{}, fmt.Errorf("generate scrape session id: %w", err)
	}

	resp, err := s.poster.Post(ctx, s.endpoint, scrapePayload{
		CustomerEmail:   user.Email,
		SearchTerms:     req.SearchTerms,
		LocationQuery:   req.LocationQuery,
		ScrapeSessionID: sessionID,
	})
	if err != nil {
		return Outcome{}, err
	}

	raw, err := payload.Decode(resp.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("decode lead generator response: %w", err)
	}
	s.logger.Debug("lead generator raw response", zap.String("session_id", sessionID), zap.Stringer("body", raw))
	blobURI := s.journal.Archive(ctx, "scrapes", sessionID, "json", "application/json", resp.Body)

	records, err := Normalize(raw)
	if err != nil {
		s.logger.Error("failed to parse leads from response", zap.Stringer("body", raw), zap.Error(err))
		return Outcome{}, err
	}
	s.logger.Info("normalized leads", zap.String("session_id", sessionID), zap.Int("count", len(records)))

	outcome, err := s.persister.Persist(ctx, Batch{
		SessionID:     sessionID,
		UserID:        user.ID,
		SearchTerms:   req.SearchTerms,
		LocationQuery: req.LocationQuery,
		Records:       records,
	})
	if err != nil {
		return Outcome{}, err
	}
	metrics.AddLeads(len(outcome.Saved), len(outcome.Failed))

	s.journal.Publish(ctx, journal.Event{
		Type:      journal.EventLeadsScraped,
		UserID:    user.ID,
		SessionID: sessionID,
		LeadCount: outcome.LeadCount(),
		Failed:    len(outcome.Failed),
		BlobURI:   blobURI,
	})
	return outcome, nil
}
