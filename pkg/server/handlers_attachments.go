package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
)

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(domain.MaxAttachmentSizeBytes); err != nil {
		writeError(w, r, domain.BadRequest("malformed multipart upload: "+err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, domain.BadRequest("missing \"file\" field: "+err.Error()))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	act := actor.FromContext(r.Context())
	uploadedBy := r.FormValue("uploaded_by")
	if uploadedBy == "" {
		uploadedBy = act.ID
	}
	description := r.FormValue("description")

	attachment, err := s.workflow.UploadAttachment(r.Context(), r.PathValue("id"), header.Filename, contentType, header.Size, file, uploadedBy, description, act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachment)
}

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	attachments, err := s.workflow.ListAttachments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attachments)
}

func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	attachment, blob, err := s.workflow.DownloadAttachment(r.Context(), r.PathValue("id"), r.PathValue("attachmentId"), act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, blob)
}

type deleteAttachmentRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	var req deleteAttachmentRequest
	_ = decodeJSON(r, &req) // body is optional; a missing/empty reason is valid

	act := actor.FromContext(r.Context())
	if err := s.workflow.SoftDeleteAttachment(r.Context(), r.PathValue("id"), r.PathValue("attachmentId"), req.Reason, act); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type redactAttachmentRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRedactAttachment(w http.ResponseWriter, r *http.Request) {
	var req redactAttachmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	act := actor.FromContext(r.Context())
	if err := s.workflow.RedactAttachment(r.Context(), r.PathValue("id"), r.PathValue("attachmentId"), req.Reason, act); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
