package fileserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// handleUpload implements POST /upload. Every check is terminal: the first
// failure writes its JSON error and stops. The request body is always
// drained before the handler returns so a client mid-send is never left with
// a stalled connection.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	defer drainBody(r, s.cfg.MaxRequestBytes)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	// The declared length is checked up front as a fast reject; the bounded
	// read below is the real enforcement, since the declaration may lie.
	if r.ContentLength > s.cfg.MaxRequestBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
		return
	}

	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		writeError(w, http.StatusBadRequest, "Missing Content-Type")
		return
	}

	if !strings.HasPrefix(contentType, "multipart/form-data") {
		writeError(w, http.StatusBadRequest, "Invalid Content-Type")
		return
	}

	boundary := ExtractBoundary(contentType)
	if boundary == "" {
		writeError(w, http.StatusBadRequest, "Missing multipart boundary")
		return
	}

	body, err := io.ReadAll(NewBoundedReader(r.Body, s.cfg.MaxRequestBytes))
	if err != nil {
		// Ceiling hit or the client went away; terminal either way.
		writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
		return
	}

	filename, data, err := ParseMultipart(body, boundary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse multipart data")
		return
	}

	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Empty file uploaded")
		return
	}

	if int64(len(data)) > s.cfg.MaxFileBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	safeName, err := SanitizeFilename(filename)
	if err != nil {
		if errors.Is(err, ErrBadFilenameChars) {
			writeError(w, http.StatusBadRequest, "Invalid filename characters")
		} else {
			writeError(w, http.StatusBadRequest, "Invalid filename")
		}
		return
	}

	resolved, err := ResolveUnderRoot(safeName, s.cfg.UploadRoot)
	if err != nil {
		writeError(w, http.StatusForbidden, "Invalid file path")
		return
	}

	if err := os.MkdirAll(s.cfg.UploadRoot, 0o755); err != nil {
		slog.Error("Failed to create upload directory", "error", err, "dir", s.cfg.UploadRoot)
		writeError(w, http.StatusInternalServerError, "Failed to create upload directory")
		return
	}

	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		slog.Error("Failed to write uploaded file", "error", err, "path", resolved)
		writeError(w, http.StatusInternalServerError, "Failed to write file")
		return
	}

	// Ownership is recorded only after the write succeeded, so an aborted
	// upload never leaves a record pointing at a partial file.
	if err := s.owners.Record(safeName, userID); err != nil {
		slog.Error("Failed to record ownership", "error", err, "filename", safeName)
		writeError(w, http.StatusInternalServerError, "Failed to write file")
		return
	}

	if s.cfg.Mirror != nil {
		if err := s.cfg.Mirror.Store(r.Context(), safeName, data); err != nil {
			slog.Warn("Mirror upload failed", "error", err, "filename", safeName)
		}
	}

	s.audit(r, "UPLOAD", safeName, userID, int64(len(data)))

	writeJSON(w, http.StatusCreated, uploadResponse{Status: "success", File: safeName})
}

// drainBody consumes any unread portion of the request body, capped so a
// hostile client cannot force unbounded reads, then closes it.
func drainBody(r *http.Request, maxBytes int64) {
	if r.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, r.Body, maxBytes+1)
	_ = r.Body.Close()
}
