package store

import "context"

// ExecForTest runs a raw statement against the store's database.
func ExecForTest(s *Store, query string, args ...any) error {
	_, err := s.db.ExecContext(context.Background(), query, args...)
	return err
}
