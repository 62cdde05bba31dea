package access

import (
	"fmt"
	"os"
	"sync"
)

// OwnershipStore tracks which user owns each stored filename. The in-memory
// map is authoritative for reads; the backing file is an append-only history
// replayed on load, where the latest line for a filename wins.
type OwnershipStore struct {
	mu     sync.RWMutex
	owners map[string]string
	file   *os.File
}

// LoadOwnershipStore reads the ownership file (creating it if necessary) and
// keeps it open for appending new records.
func LoadOwnershipStore(path string) (*OwnershipStore, error) {
	owners, err := loadPairs(path)
	if err != nil {
		return nil, fmt.Errorf("load ownership file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ownership file for append: %w", err)
	}

	return &OwnershipStore{owners: owners, file: f}, nil
}

// IsOwner reports whether userID owns filename. Unknown filenames are simply
// not owned.
func (s *OwnershipStore) IsOwner(filename string, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.owners[filename]
	return ok && owner == userID
}

// Record upserts the ownership of filename in memory and appends a
// `filename|userID` line to the backing file. The append is a single write
// call made under the lock, so concurrent records never interleave partial
// lines.
func (s *OwnershipStore) Record(filename string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.WriteString(filename + "|" + userID + "\n"); err != nil {
		return fmt.Errorf("append ownership record: %w", err)
	}

	s.owners[filename] = userID
	return nil
}

// Close releases the backing file handle.
func (s *OwnershipStore) Close() error {
	return s.file.Close()
}
