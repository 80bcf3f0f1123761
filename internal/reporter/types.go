// Package reporter holds the domain types shared by the audit, lead and
// outreach services together with the interfaces their collaborators satisfy.
package reporter

import (
	"errors"
	"time"
)

// Sentinel errors mapped to HTTP statuses at the API boundary.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// Role distinguishes website owners from agencies.
type Role string

// Known roles.
const (
	RoleOwner  Role = "owner"
	RoleAgency Role = "agency"
)

// User is the subset of the auth provider's user row the service reads.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Audit is one stored SEO audit report.
type Audit struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	WebsiteURL    string    `json:"websiteUrl"`
	ReportContent string    `json:"reportContent"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ScrapeSession groups the leads returned by one lead search.
type ScrapeSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	SearchTerms   string    `json:"searchTerms"`
	LocationQuery string    `json:"locationQuery"`
	CreatedAt     time.Time `json:"createdAt"`
	Leads         []Lead    `json:"leads"`
}

// Lead is a business record produced by the lead generator. Optional fields
// are nil when the generator did not supply them.
type Lead struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	BusinessName string    `json:"businessName"`
	CategoryName *string   `json:"categoryName"`
	Address      *string   `json:"address"`
	Website      *string   `json:"website"`
	Phone        *string   `json:"phone"`
	Email        *string   `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}
