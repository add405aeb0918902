package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	evidenceerrors "pulseops/contexts/incident-response/evidence-service/domain/errors"
	evidencehttp "pulseops/contexts/incident-response/evidence-service/transport/http"
	"pulseops/internal/shared/correlation"
)

// Uploads above this are rejected before reading the body into memory.
const maxEvidenceBytes = 64 << 20

func (s *Server) handleUploadEvidence(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEvidenceBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeEvidenceError(w, http.StatusBadRequest, "invalid_multipart", "request must be multipart/form-data with a file part")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeEvidenceError(w, http.StatusBadRequest, "missing_file", "file part is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := s.evidence.Handler.UploadEvidenceHandler(
		r.Context(),
		r.PathValue("incident_id"),
		header.Filename,
		contentType,
		header.Size,
		file,
		correlation.FromContext(r.Context()),
	)
	if err != nil {
		writeEvidenceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListEvidence(w http.ResponseWriter, r *http.Request) {
	resp, err := s.evidence.Handler.ListEvidenceHandler(r.Context(), r.PathValue("incident_id"))
	if err != nil {
		writeEvidenceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEvidence(w http.ResponseWriter, r *http.Request) {
	resp, err := s.evidence.Handler.GetEvidenceHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEvidenceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownloadEvidence(w http.ResponseWriter, r *http.Request) {
	evidence, reader, err := s.evidence.Handler.DownloadEvidenceHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEvidenceDomainError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", evidence.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", evidence.Filename))
	if evidence.SizeBytes > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", evidence.SizeBytes))
	}
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.WarnContext(r.Context(), "evidence_download_interrupted",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"evidence_id", evidence.ID,
			"error", err,
		)
	}
}

func writeEvidenceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, evidenceerrors.ErrEvidenceNotFound):
		writeEvidenceError(w, http.StatusNotFound, "evidence_not_found", err.Error())
	case errors.Is(err, evidenceerrors.ErrInvalidRequest):
		writeEvidenceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeEvidenceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEvidenceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, evidencehttp.ErrorResponse{Code: code, Message: message})
}
