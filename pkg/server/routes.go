package server

import (
	"net/http"

	"github.com/autocomply/casework/pkg/config"
	"github.com/autocomply/casework/pkg/server/middleware"
)

// setupRoutes builds the full route table and middleware chain. Health,
// version, and metrics endpoints are mounted on the bare mux so they
// never require an X-AutoComply-Role header; every case-workflow route
// sits behind withActor.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	s.mountHealth(mux)

	if s.cfg.Telemetry.Metrics.Enabled && s.metrics != nil {
		path := s.cfg.Telemetry.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.metrics.Handler())
	}

	api := http.NewServeMux()

	api.HandleFunc("POST /submissions", s.handleCreateSubmission)
	api.HandleFunc("GET /submissions/{id}", s.handleGetSubmission)
	api.HandleFunc("PATCH /submissions/{id}", s.handleUpdateSubmission)
	api.HandleFunc("DELETE /submissions/{id}", s.handleCancelSubmission)

	api.HandleFunc("GET /cases", s.handleListCases)
	api.HandleFunc("GET /cases/{id}", s.handleGetCase)
	api.HandleFunc("PATCH /cases/{id}", s.handlePatchCase)
	api.HandleFunc("POST /cases/{id}/assign", s.handleAssign)
	api.HandleFunc("POST /cases/{id}/unassign", s.handleUnassign)
	api.HandleFunc("POST /cases/{id}/status", s.handleSetStatus)
	api.HandleFunc("GET /cases/{id}/events", s.handleListEvents)
	api.HandleFunc("POST /cases/{id}/notes", s.handleAddNote)

	api.HandleFunc("POST /cases/{id}/evidence", s.handleAttachEvidence)
	api.HandleFunc("GET /cases/{id}/evidence", s.handleListEvidence)
	api.HandleFunc("DELETE /cases/{id}/evidence/{evidenceId}", s.handleRemoveEvidence)
	api.HandleFunc("PUT /cases/{id}/packet", s.handleSetPacket)

	api.HandleFunc("POST /cases/{id}/attachments", s.handleUploadAttachment)
	api.HandleFunc("GET /cases/{id}/attachments", s.handleListAttachments)
	api.HandleFunc("GET /cases/{id}/attachments/{attachmentId}", s.handleDownloadAttachment)
	api.HandleFunc("DELETE /cases/{id}/attachments/{attachmentId}", s.handleDeleteAttachment)
	api.HandleFunc("POST /cases/{id}/attachments/{attachmentId}/redact", s.handleRedactAttachment)

	api.HandleFunc("POST /cases/{id}/recompute", s.handleRecompute)
	api.HandleFunc("GET /cases/{id}/intelligence/history", s.handleIntelligenceHistory)

	api.HandleFunc("GET /cases/{id}/audit-export", s.handleAuditExport)

	mux.Handle("/", withActor(api))

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(s.cfg.Server.CORS)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

func (s *Server) mountHealth(mux *http.ServeMux) {
	handlers := s.health.CreateHandlers(s.version, s.commit, s.buildTime, func() []string {
		return config.Warnings(s.cfg)
	})
	mux.HandleFunc("/healthz", handlers.LivenessHandler)
	mux.HandleFunc("/health/details", handlers.DetailsHandler)
	mux.HandleFunc("/version", handlers.VersionHandler)
}
