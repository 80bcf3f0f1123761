// Package api hosts the HTTP server, middleware, and JSON handlers of the SEO
// reporter. Notable routes:
//   - GET /healthz and /readyz for probes; readyz pings the store.
//   - GET /metrics for Prometheus scraping.
//   - POST /api/generate-audit, open to anonymous visitors.
//   - GET /api/audits and /api/lead-sessions for the signed-in dashboard.
//   - POST /api/scrape-leads and /api/send-lead-email for agency workflows.
//
// Every handler error leaves the package as {"error": message}.
package api
