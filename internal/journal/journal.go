// Package journal archives raw webhook payloads to blob storage and publishes
// domain events. Both are best-effort: failures are logged and swallowed.
package journal

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/reporter"
)

// Event types.
const (
	EventAuditGenerated = "audit.generated"
	EventLeadsScraped   = "leads.scraped"
	EventLeadEmailSent  = "lead_email.sent"
)

// Event is the JSON body published for each completed operation.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	UserID     string    `json:"userId,omitempty"`
	AuditID    string    `json:"auditId,omitempty"`
	SessionID  string    `json:"sessionId,omitempty"`
	Website    string    `json:"website,omitempty"`
	LeadCount  int       `json:"leadCount,omitempty"`
	Failed     int       `json:"failedCount,omitempty"`
	Recipient  string    `json:"recipient,omitempty"`
	BlobURI    string    `json:"blobUri,omitempty"`
}

// Attributes exposes the event type as a message attribute.
func (e Event) Attributes() map[string]string {
	return map[string]string{"event_type": e.Type}
}

// Config sets where blobs go and which topic events land on.
type Config struct {
	Prefix string
	Topic  string
}

// Journal writes archives and events. A nil *Journal is a no-op.
type Journal struct {
	blobs     reporter.BlobStore
	publisher reporter.Publisher
	hasher    reporter.Hasher
	clock     reporter.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Journal. blobs and publisher may be nil to disable that half.
func New(
	cfg Config,
	blobs reporter.BlobStore,
	publisher reporter.Publisher,
	hasher reporter.Hasher,
	clock reporter.Clock,
	logger *zap.Logger,
) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{
		blobs:     blobs,
		publisher: publisher,
		hasher:    hasher,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Archive stores data under <prefix>/<kind>/<ownerID>/<sha256>.<ext> and
// returns the blob URI, or "" when archiving is disabled or fails.
func (j *Journal) Archive(ctx context.Context, kind, ownerID, ext, contentType string, data []byte) string {
	if j == nil || j.blobs == nil || j.hasher == nil {
		return ""
	}
	hash, err := j.hasher.Hash(data)
	if err != nil {
		j.logger.Warn("hash archive payload failed", zap.String("kind", kind), zap.Error(err))
		return ""
	}
	path := j.buildBlobPath(kind, ownerID, hash, ext)
	uri, err := j.blobs.PutObject(ctx, path, contentType, bytes.NewReader(data))
	if err != nil {
		j.logger.Warn("archive payload failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	j.logger.Debug("payload archived", zap.String("uri", uri))
	return uri
}

// Publish sends evt to the configured topic, stamping OccurredAt when unset.
func (j *Journal) Publish(ctx context.Context, evt Event) {
	if j == nil || j.publisher == nil {
		return
	}
	if evt.OccurredAt.IsZero() && j.clock != nil {
		evt.OccurredAt = j.clock.Now()
	}
	id, err := j.publisher.Publish(ctx, j.cfg.Topic, evt)
	if err != nil {
		j.logger.Warn("publish event failed", zap.String("type", evt.Type), zap.Error(err))
		return
	}
	j.logger.Debug("event published", zap.String("type", evt.Type), zap.String("message_id", id))
}

func (j *Journal) buildBlobPath(kind, ownerID, hash, ext string) string {
	name := hash
	if ext != "" {
		name = fmt.Sprintf("%s.%s", hash, ext)
	}
	prefix := strings.Trim(j.cfg.Prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("%s/%s/%s", kind, ownerID, name)
	}
	return fmt.Sprintf("%s/%s/%s/%s", prefix, kind, ownerID, name)
}
