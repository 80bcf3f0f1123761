package leads

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/payload"
	"github.com/JakeFAU/seo-reporter/internal/reporter"
)

// ErrNullRecord marks a null entry in the lead list; it cannot be mapped.
var ErrNullRecord = errors.New("lead record is null")

// Batch is one scrape's worth of normalized records.
type Batch struct {
	SessionID     string
	UserID        string
	SearchTerms   string
	LocationQuery string
	Records       []payload.Value
}

// FailedRecord is a record that could not be stored.
type FailedRecord struct {
	Index  int
	Record payload.Value
	Err    error
}

// Outcome summarizes a persisted batch.
type Outcome struct {
	SessionID string
	Saved     []reporter.Lead
	Failed    []FailedRecord
}

// LeadCount is the number of leads that were stored.
func (o Outcome) LeadCount() int {
	return len(o.Saved)
}

// Persister writes a scrape session and then its leads one at a time.
type Persister struct {
	store  reporter.LeadStore
	ids    reporter.IDGenerator
	clock  reporter.Clock
	logger *zap.Logger
}

// NewPersister constructs a Persister.
func NewPersister(store reporter.LeadStore, ids reporter.IDGenerator, clock reporter.Clock, logger *zap.Logger) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{store: store, ids: ids, clock: clock, logger: logger}
}

// Persist creates the session row and inserts every record in order. Only a
// session insert failure is returned; per-lead failures land in Outcome.Failed.
func (p *Persister) Persist(ctx context.Context, batch Batch) (Outcome, error) {
	session := reporter.ScrapeSession{
		ID:            batch.SessionID,
		UserID:        batch.UserID,
		SearchTerms:   batch.SearchTerms,
		LocationQuery: batch.LocationQuery,
		CreatedAt:     p.clock.Now(),
	}
	p.logger.Info("creating scrape session", zap.String("session_id", session.ID))
	if err := p.store.CreateScrapeSession(ctx, session); err != nil {
		return Outcome{}, fmt.Errorf("create scrape session: %w", err)
	}

	outcome := Outcome{SessionID: session.ID, Saved: make([]reporter.Lead, 0, len(batch.Records))}
	total := len(batch.Records)
	for i, record := range batch.Records {
		lead, err := p.persistOne(ctx, session.ID, record)
		if err != nil {
			outcome.Failed = append(outcome.Failed, FailedRecord{Index: i, Record: record, Err: err})
			p.logger.Error("failed to save lead",
				zap.Int("index", i+1),
				zap.Int("total", total),
				zap.Stringer("record", record),
				zap.Error(err),
			)
			continue
		}
		outcome.Saved = append(outcome.Saved, lead)
		p.logger.Debug("saved lead",
			zap.Int("index", i+1),
			zap.Int("total", total),
			zap.String("business_name", lead.BusinessName),
		)
	}

	p.logger.Info("scrape session persisted",
		zap.String("session_id", session.ID),
		zap.Int("saved", len(outcome.Saved)),
		zap.Int("failed", len(outcome.Failed)),
	)
	return outcome, nil
}

func (p *Persister) persistOne(ctx context.Context, sessionID string, record payload.Value) (reporter.Lead, error) {
	if record.Kind() == payload.Null {
		return reporter.Lead{}, ErrNullRecord
	}
	id, err := p.ids.NewID()
	if err != nil {
		return reporter.Lead{}, fmt.Errorf("generate lead id: %w", err)
	}
	lead := MapLead(record, id, sessionID)
	lead.CreatedAt = p.clock.Now()
	if err := p.store.CreateLead(ctx, lead); err != nil {
		return reporter.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}
