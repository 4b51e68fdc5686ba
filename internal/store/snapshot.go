package store

import "fmt"

// AttributeRow is one persisted (class, attribute) record of a tracking
// session. Descriptor holds the descriptor's JSON encoding; the store does
// not interpret it.
type AttributeRow struct {
	Class        string
	Attribute    string
	Descriptor   string
	Observations int
}

// SaveSnapshot persists a tracking session, replacing any previously saved
// snapshot in the same transaction. Callers wanting to accumulate across
// runs load the existing snapshot first and merge before saving.
func (s *Store) SaveSnapshot(rows []AttributeRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM attributes"); err != nil {
		return fmt.Errorf("save snapshot: clear: %w", err)
	}
	for _, row := range rows {
		if _, err := tx.Exec(
			"INSERT INTO attributes (class, attribute, descriptor, observations) VALUES (?, ?, ?, ?)",
			row.Class, row.Attribute, row.Descriptor, row.Observations,
		); err != nil {
			return fmt.Errorf("save snapshot: %s.%s: %w", row.Class, row.Attribute, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// Snapshot returns the saved tracking session ordered by (class, attribute).
// Returns ErrNotFound when no snapshot has been saved.
func (s *Store) Snapshot() ([]AttributeRow, error) {
	rows, err := s.db.Query(
		"SELECT class, attribute, descriptor, observations FROM attributes ORDER BY class, attribute")
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	var out []AttributeRow
	for rows.Next() {
		var row AttributeRow
		if err := rows.Scan(&row.Class, &row.Attribute, &row.Descriptor, &row.Observations); err != nil {
			return nil, fmt.Errorf("load snapshot: scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("load snapshot: %w", ErrNotFound)
	}
	return out, nil
}
