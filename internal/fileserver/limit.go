package fileserver

import (
	"errors"
	"io"
)

// ErrLimitExceeded indicates a bounded reader consumed more bytes than its
// configured ceiling allows.
var ErrLimitExceeded = errors.New("byte limit exceeded")

// BoundedReader wraps an input stream and fails the moment the running byte
// count surpasses the ceiling. Unlike a plain io.LimitReader it surfaces an
// error instead of silently truncating, so a lying Content-Length or a
// chunked request cannot smuggle in more data than allowed.
type BoundedReader struct {
	r         io.Reader
	maxBytes  int64
	bytesRead int64
}

// NewBoundedReader returns a BoundedReader enforcing maxBytes on r.
func NewBoundedReader(r io.Reader, maxBytes int64) *BoundedReader {
	return &BoundedReader{r: r, maxBytes: maxBytes}
}

func (b *BoundedReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if n > 0 {
		b.bytesRead += int64(n)
		if b.bytesRead > b.maxBytes {
			return n, ErrLimitExceeded
		}
	}

	return n, err
}

// BytesRead reports how many bytes have been consumed so far.
func (b *BoundedReader) BytesRead() int64 {
	return b.bytesRead
}
