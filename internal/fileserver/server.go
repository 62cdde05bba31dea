package fileserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Jospin-M/secure-file-server/internal/access"

	"github.com/go-chi/chi/v5"
)

const (
	// DefaultMaxFileBytes is the ceiling on a decoded file payload.
	DefaultMaxFileBytes = 10 * 1024 * 1024

	// DefaultMaxRequestBytes is the ceiling on a whole request body. It is
	// larger than the file ceiling to leave room for multipart framing.
	DefaultMaxRequestBytes = 12 * 1024 * 1024
)

type Config struct {
	// UploadRoot is the directory all uploaded and downloaded files must
	// resolve under.
	UploadRoot string

	// MaxRequestBytes bounds the raw request body; MaxFileBytes bounds the
	// decoded file payload. Zero values select the defaults.
	MaxRequestBytes int64
	MaxFileBytes    int64

	// Transfers, when non-nil, records an audit row for every successful
	// upload and download.
	Transfers *TransferLog

	// Mirror, when non-nil, replicates stored files to an S3-compatible
	// bucket after each successful upload.
	Mirror *Mirror
}

// Server implements the upload/download HTTP API. The token and ownership
// stores are injected so tests can run against fixture files.
type Server struct {
	cfg    Config
	tokens *access.TokenStore
	owners *access.OwnershipStore
}

// NewServer validates the configuration and returns a new Server.
func NewServer(cfg Config, tokens *access.TokenStore, owners *access.OwnershipStore) (*Server, error) {
	if cfg.UploadRoot == "" {
		return nil, errors.New("UploadRoot must not be empty")
	}

	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = DefaultMaxFileBytes
	}

	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = DefaultMaxRequestBytes
	}

	return &Server{cfg: cfg, tokens: tokens, owners: owners}, nil
}

// Handler returns the http.Handler for the file exchange API.
//
// Method checks live inside the handlers rather than in the router so that a
// wrong-method request still gets the JSON 405 body with an Allow header.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(LogRequest)
	r.Use(Recoverer)

	r.Handle("/upload", http.HandlerFunc(s.handleUpload))
	r.Handle("/download/*", http.HandlerFunc(s.handleDownload))

	return r
}

// authenticate resolves the request's bearer token to a user ID, writing the
// appropriate error response on failure.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := s.tokens.Authenticate(r.Header.Get("Authorization"))
	if err == nil {
		return userID, true
	}

	switch {
	case errors.Is(err, access.ErrMissingHeader):
		writeError(w, http.StatusBadRequest, "Authorization header missing")
	case errors.Is(err, access.ErrBadScheme):
		writeError(w, http.StatusBadRequest, "Invalid Authorization scheme")
	default:
		writeError(w, http.StatusUnauthorized, "Invalid token")
	}

	return "", false
}

// audit logs a completed transfer and, when a transfer log is configured,
// records it durably. Audit failures never affect the client response.
func (s *Server) audit(r *http.Request, action string, filename string, userID string, size int64) {
	slog.Info(action,
		"filename", filename,
		"user", userID,
		"size", size,
		"ip", r.RemoteAddr,
	)

	if s.cfg.Transfers == nil {
		return
	}

	entry := TransferEntry{
		Action:     action,
		Filename:   filename,
		UserID:     userID,
		Size:       size,
		RemoteAddr: r.RemoteAddr,
	}
	if err := s.cfg.Transfers.Record(r.Context(), entry); err != nil {
		slog.Error("Failed to record transfer", "error", err, "filename", filename)
	}
}
