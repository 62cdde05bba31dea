package fileserver

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundedReader_UnderLimit(t *testing.T) {
	t.Parallel()

	src := bytes.Repeat([]byte("x"), 100)
	r := NewBoundedReader(bytes.NewReader(src), 100)

	data, err := io.ReadAll(r)
	require.NoError(t, err, "reading exactly the limit")
	require.Equal(t, src, data, "payload")
	require.Equal(t, int64(100), r.BytesRead(), "bytes read")
}

func TestBoundedReader_OverLimit(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("x", 101)
	r := NewBoundedReader(strings.NewReader(src), 100)

	_, err := io.ReadAll(r)
	require.ErrorIs(t, err, ErrLimitExceeded, "one byte past the ceiling must fail")
}

func TestBoundedReader_FailsMidStream(t *testing.T) {
	t.Parallel()

	// Feed one byte per read so the ceiling trips partway through, not at
	// the end of a single large read.
	r := NewBoundedReader(&oneByteReader{data: strings.Repeat("y", 10)}, 5)

	buf := make([]byte, 1)
	var total int
	var err error
	for {
		var n int
		n, err = r.Read(buf)
		total += n
		if err != nil {
			break
		}
	}

	require.ErrorIs(t, err, ErrLimitExceeded, "mid-stream limit")
	require.Equal(t, 6, total, "reader fails the instant the counter passes the ceiling")
}

// oneByteReader yields one byte per Read call.
type oneByteReader struct {
	data string
}

func (s *oneByteReader) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	p[0] = s.data[0]
	s.data = s.data[1:]
	return 1, nil
}
