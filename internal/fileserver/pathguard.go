package fileserver

import (
	"errors"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrOutsideRoot indicates a resolved path escaped the upload root.
	ErrOutsideRoot = errors.New("path resolves outside the upload root")

	// ErrEmptyFilename indicates the sanitized filename is empty.
	ErrEmptyFilename = errors.New("empty filename")

	// ErrBadFilenameChars indicates the filename contains characters outside
	// the allow-list.
	ErrBadFilenameChars = errors.New("filename contains invalid characters")

	filenamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// SanitizeFilename strips any directory components from a client-supplied
// name and enforces the upload filename allow-list. The allow-list rejects
// shell metacharacters and unusual Unicode independently of the traversal
// check that follows in ResolveUnderRoot.
func SanitizeFilename(name string) (string, error) {
	// Take only the final path segment. Backslashes are treated as
	// separators too so Windows-style traversal is stripped, not stored.
	name = strings.ReplaceAll(name, `\`, "/")
	base := path.Base(name)

	if base == "" || base == "." || base == "/" {
		return "", ErrEmptyFilename
	}

	if !filenamePattern.MatchString(base) {
		return "", ErrBadFilenameChars
	}

	return base, nil
}

// ResolveUnderRoot joins a requested name to the upload root, normalizes the
// result, and verifies it is still inside the root. Every filesystem
// operation on a client-supplied name must go through this check, on both
// the upload and download paths.
func ResolveUnderRoot(requested string, uploadRoot string) (string, error) {
	resolved := filepath.Clean(filepath.Join(uploadRoot, requested))

	root := filepath.Clean(uploadRoot)
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}

	return resolved, nil
}

// LastPathSegment returns the portion of a URL path after the final '/'.
// It is how the download endpoint extracts the requested filename.
func LastPathSegment(urlPath string) string {
	return urlPath[strings.LastIndexByte(urlPath, '/')+1:]
}
