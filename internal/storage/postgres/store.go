// Package postgres implements reporter.Store on Postgres using the tables
// shared with the auth provider.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/seo-reporter/internal/reporter"
)

//go:embed schema.sql
var schemaSQL string

// Pool defaults applied when Config leaves a value unset.
const (
	DefaultMaxConns        int32 = 10
	DefaultMaxConnIdleTime       = 30 * time.Second
	DefaultConnectTimeout        = 2 * time.Second
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

// Pool is the subset of *pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store reads and writes users, audits, scrape sessions and leads.
type Store struct {
	pool Pool
}

// New connects a bounded pool using cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	poolCfg.MaxConns = DefaultMaxConns
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	poolCfg.MaxConnIdleTime = DefaultMaxConnIdleTime
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	poolCfg.ConnConfig.ConnectTimeout = DefaultConnectTimeout
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Migrate applies the idempotent schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const userColumns = `u.id, u.name, u.email, u.role`

// FindUserByEmail looks up one user by exact email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (reporter.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" u WHERE u.email = $1 LIMIT 1`, email)
	return scanUser(row, "find user by email")
}

// FindUserBySessionToken resolves an unexpired auth session token.
func (s *Store) FindUserBySessionToken(ctx context.Context, token string, now time.Time) (reporter.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM session s JOIN "user" u ON u.id = s.user_id
WHERE s.token = $1 AND s.expires_at > $2 LIMIT 1`, token, now)
	return scanUser(row, "find user by session")
}

func scanUser(row pgx.Row, op string) (reporter.User, error) {
	var user reporter.User
	var role string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reporter.User{}, reporter.ErrNotFound
		}
		return reporter.User{}, fmt.Errorf("%s: %w", op, err)
	}
	user.Role = reporter.Role(role)
	return user, nil
}

// CreateAudit inserts an audit row.
func (s *Store) CreateAudit(ctx context.Context, audit reporter.Audit) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO audit (id, user_id, website_url, report_content, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		audit.ID, audit.UserID, audit.WebsiteURL, audit.ReportContent, audit.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// ListAudits returns a user's audits, newest first.
func (s *Store) ListAudits(ctx context.Context, userID string) ([]reporter.Audit, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, website_url, report_content, created_at
FROM audit WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query audits: %w", err)
	}
	defer rows.Close()

	audits := []reporter.Audit{}
	for rows.Next() {
		var a reporter.Audit
		if err := rows.Scan(&a.ID, &a.UserID, &a.WebsiteURL, &a.ReportContent, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audits: %w", err)
	}
	return audits, nil
}

// CreateScrapeSession inserts a scrape session row.
func (s *Store) CreateScrapeSession(ctx context.Context, session reporter.ScrapeSession) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO scrape_session (id, user_id, search_terms, location_query, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, session.SearchTerms, session.LocationQuery, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scrape session: %w", err)
	}
	return nil
}

// CreateLead inserts one lead row.
func (s *Store) CreateLead(ctx context.Context, lead reporter.Lead) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO lead (id, session_id, business_name, category_name, address, website, phone, email, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lead.ID, lead.SessionID, lead.BusinessName, lead.CategoryName, lead.Address,
		lead.Website, lead.Phone, lead.Email, lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// ListScrapeSessions returns a user's sessions, newest first, with their leads.
func (s *Store) ListScrapeSessions(ctx context.Context, userID string) ([]reporter.ScrapeSession, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, search_terms, location_query, created_at
FROM scrape_session WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query scrape sessions: %w", err)
	}
	sessions := []reporter.ScrapeSession{}
	for rows.Next() {
		var ss reporter.ScrapeSession
		if err := rows.Scan(&ss.ID, &ss.UserID, &ss.SearchTerms, &ss.LocationQuery, &ss.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan scrape session: %w", err)
		}
		ss.Leads = []reporter.Lead{}
		sessions = append(sessions, ss)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scrape sessions: %w", err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	ids := make([]string, len(sessions))
	index := make(map[string]int, len(sessions))
	for i, ss := range sessions {
		ids[i] = ss.ID
		index[ss.ID] = i
	}
	if err := s.attachLeads(ctx, ids, sessions, index); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) attachLeads(ctx context.Context, ids []string, sessions []reporter.ScrapeSession, index map[string]int) error {
	rows, err := s.pool.Query(ctx, `
SELECT id, session_id, business_name, category_name, address, website, phone, email, created_at
FROM lead WHERE session_id = ANY($1) ORDER BY created_at ASC, id ASC`, ids)
	if err != nil {
		return fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l reporter.Lead
		if err := rows.Scan(&l.ID, &l.SessionID, &l.BusinessName, &l.CategoryName, &l.Address,
			&l.Website, &l.Phone, &l.Email, &l.CreatedAt); err != nil {
			return fmt.Errorf("scan lead: %w", err)
		}
		if i, ok := index[l.SessionID]; ok {
			sessions[i].Leads = append(sessions[i].Leads, l)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate leads: %w", err)
	}
	return nil
}
