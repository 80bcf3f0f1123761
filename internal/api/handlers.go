package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/audit"
	"github.com/JakeFAU/seo-reporter/internal/auth"
	"github.com/JakeFAU/seo-reporter/internal/leads"
	"github.com/JakeFAU/seo-reporter/internal/outreach"
	"github.com/JakeFAU/seo-reporter/internal/reporter"
)

const internalServerError = "Internal Server Error"

type generateAuditResponse struct {
	Success bool   `json:"success"`
	Report  string `json:"report"`
}

type scrapeLeadsResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	LeadCount int    `json:"leadCount"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) listAudits(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	audits, err := s.deps.Store.ListAudits(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("list audits failed", zap.String("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, internalServerError)
		return
	}
	if audits == nil {
		audits = []reporter.Audit{}
	}
	writeJSON(w, http.StatusOK, audits)
}

func (s *Server) listLeadSessions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	sessions, err := s.deps.Store.ListScrapeSessions(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("list lead sessions failed", zap.String("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, internalServerError)
		return
	}
	if sessions == nil {
		sessions = []reporter.ScrapeSession{}
	}
	for i := range sessions {
		if sessions[i].Leads == nil {
			sessions[i].Leads = []reporter.Lead{}
		}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) generateAudit(w http.ResponseWriter, r *http.Request) {
	var req audit.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err, "Failed to generate audit")
		return
	}
	result, err := s.deps.Audits.Generate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, "Failed to generate audit")
		return
	}
	writeJSON(w, http.StatusOK, generateAuditResponse{Success: true, Report: result.Report})
}

func (s *Server) scrapeLeads(w http.ResponseWriter, r *http.Request) {
	var req leads.ScrapeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err, "Failed to scrape leads")
		return
	}
	user, _ := auth.UserFrom(r.Context())
	outcome, err := s.deps.Leads.Scrape(r.Context(), user, req)
	if err != nil {
		s.fail(w, r, err, "Failed to scrape leads")
		return
	}
	writeJSON(w, http.StatusOK, scrapeLeadsResponse{
		Success:   true,
		SessionID: outcome.SessionID,
		LeadCount: outcome.LeadCount(),
	})
}

func (s *Server) sendLeadEmail(w http.ResponseWriter, r *http.Request) {
	var req outreach.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err, "Failed to send email")
		return
	}
	user, _ := auth.UserFrom(r.Context())
	if err := s.deps.Outreach.Send(r.Context(), user, req); err != nil {
		s.fail(w, r, err, "Failed to send email")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// fail maps err onto a status code and echoes its message. fallback is used
// when the error carries no message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	switch {
	case errors.Is(err, reporter.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, reporter.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
