package fileserver

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// handleDownload implements GET /download/<filename>. Existence and
// ownership failures collapse into the same 404 so a request can never learn
// whether a file exists under a different owner.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	requested := LastPathSegment(r.URL.Path)

	resolved, err := ResolveUnderRoot(requested, s.cfg.UploadRoot)
	if err != nil {
		writeError(w, http.StatusForbidden, "Invalid file path")
		return
	}

	filename := filepath.Base(resolved)

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() || !s.owners.IsOwner(filename, userID) {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	f, err := os.Open(resolved)
	if err != nil {
		// Filesystem detail stays server-side; the client sees the same
		// not-found surface as any other miss.
		slog.Error("Failed to open file for download", "error", err, "path", resolved)
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	s.audit(r, "DOWNLOAD", filename, userID, info.Size())

	if _, err := io.Copy(w, f); err != nil {
		slog.Warn("Download stream interrupted", "error", err, "filename", filename)
	}
}
