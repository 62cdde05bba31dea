package access

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// TokenStore maps bearer tokens to user IDs. The mapping is loaded once from
// a flat file at startup and is immutable for the lifetime of the process, so
// lookups need no locking.
type TokenStore struct {
	tokens map[string]string
}

// LoadTokenStore reads a token file and returns a populated TokenStore.
// Each line is a `token|user_id` pair; blank lines and lines starting with
// '#' are skipped. If the file does not exist it is created empty.
func LoadTokenStore(path string) (*TokenStore, error) {
	tokens, err := loadPairs(path)
	if err != nil {
		return nil, fmt.Errorf("load token file: %w", err)
	}

	return &TokenStore{tokens: tokens}, nil
}

// UserID returns the user ID associated with token, or "" and false if the
// token is unknown. Lookup is exact-match and case-sensitive.
func (s *TokenStore) UserID(token string) (string, bool) {
	id, ok := s.tokens[token]
	return id, ok
}

// loadPairs parses a newline-delimited `key|value` file into a map. Later
// lines for the same key overwrite earlier ones.
func loadPairs(path string) (map[string]string, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs := make(map[string]string)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "|")
		if !found {
			continue
		}

		pairs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return pairs, nil
}
