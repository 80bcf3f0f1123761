package reporter

import (
	"context"
	"io"
	"time"
)

// UserStore reads users owned by the auth provider.
type UserStore interface {
	// FindUserByEmail returns ErrNotFound when no user has exactly this email.
	FindUserByEmail(ctx context.Context, email string) (User, error)
	// FindUserBySessionToken resolves an unexpired session token to its user.
	FindUserBySessionToken(ctx context.Context, token string, now time.Time) (User, error)
}

// AuditStore persists audit reports.
type AuditStore interface {
	CreateAudit(ctx context.Context, audit Audit) error
	ListAudits(ctx context.Context, userID string) ([]Audit, error)
}

// LeadStore persists scrape sessions and their leads.
type LeadStore interface {
	CreateScrapeSession(ctx context.Context, session ScrapeSession) error
	CreateLead(ctx context.Context, lead Lead) error
	ListScrapeSessions(ctx context.Context, userID string) ([]ScrapeSession, error)
}

// Store is the full persistence surface used by the HTTP server.
type Store interface {
	UserStore
	AuditStore
	LeadStore
	Ping(ctx context.Context) error
	Close()
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces record IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Hasher computes content digests used in archive paths.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes domain events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}
