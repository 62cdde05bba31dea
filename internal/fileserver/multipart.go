package fileserver

import (
	"bytes"
	"errors"
	"strings"
)

var (
	// ErrNoFilePart indicates the body contains no Content-Disposition header.
	ErrNoFilePart = errors.New("multipart: no file part found")

	// ErrNoFilename indicates the file part carries no quoted filename value.
	ErrNoFilename = errors.New("multipart: no filename in file part")

	// ErrUnterminatedPart indicates the file part is not closed by a boundary
	// delimiter (or its headers are never terminated by a blank line).
	ErrUnterminatedPart = errors.New("multipart: unterminated file part")
)

// ExtractBoundary pulls the boundary parameter out of a Content-Type header
// value such as `multipart/form-data; boundary=----WebKitFormBoundaryXYZ`.
// It returns "" if no boundary parameter is present.
func ExtractBoundary(contentType string) string {
	for _, part := range strings.Split(contentType, ";") {
		part = strings.TrimSpace(part)
		if rest, found := strings.CutPrefix(part, "boundary="); found {
			return rest
		}
	}

	return ""
}

// ParseMultipart extracts the single file part from a multipart/form-data
// body. It is deliberately not a general multipart parser: it locates the
// first part carrying a filename attribute and returns its name and payload.
//
// Header scanning works on a text view of the buffer, but the payload is
// always sliced out of the original byte buffer so binary content survives
// untouched. The payload ends two bytes before the next `--boundary`
// occurrence, excluding the CRLF that precedes the delimiter.
func ParseMultipart(body []byte, boundary string) (string, []byte, error) {
	headerStart := bytes.Index(body, []byte("Content-Disposition"))
	if headerStart == -1 {
		return "", nil, ErrNoFilePart
	}

	fnIndex := bytes.Index(body[headerStart:], []byte("filename="))
	if fnIndex == -1 {
		return "", nil, ErrNoFilename
	}
	fnIndex += headerStart

	quoteStart := bytes.IndexByte(body[fnIndex:], '"')
	if quoteStart == -1 {
		return "", nil, ErrNoFilename
	}
	quoteStart += fnIndex

	quoteEnd := bytes.IndexByte(body[quoteStart+1:], '"')
	if quoteEnd == -1 {
		return "", nil, ErrNoFilename
	}
	quoteEnd += quoteStart + 1

	filename := string(body[quoteStart+1 : quoteEnd])

	// The payload begins immediately after the blank line that terminates
	// the part's headers.
	headerEnd := bytes.Index(body[quoteEnd:], []byte("\r\n\r\n"))
	if headerEnd == -1 {
		return "", nil, ErrUnterminatedPart
	}
	payloadStart := quoteEnd + headerEnd + 4

	delimiter := []byte("--" + boundary)
	delimIndex := bytes.Index(body[payloadStart:], delimiter)
	if delimIndex == -1 {
		return "", nil, ErrUnterminatedPart
	}

	payloadEnd := payloadStart + delimIndex - 2
	if payloadEnd < payloadStart {
		payloadEnd = payloadStart
	}

	return filename, body[payloadStart:payloadEnd], nil
}
