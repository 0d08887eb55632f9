package store

import (
	"context"
	"fmt"
	"time"

	"github.com/edumarques81/stellar-hero/internal/domain/contact"
)

// Insert stores a contact record.
func (d *DB) Insert(ctx context.Context, rec contact.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return ErrNotOpen
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, email, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.Email, rec.Message, rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// CountContacts returns the number of stored contact records.
func (d *DB) CountContacts(ctx context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return 0, ErrNotOpen
	}

	var n int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return n, nil
}

// RecentContacts returns up to limit records, newest first.
func (d *DB) RecentContacts(ctx context.Context, limit int) ([]contact.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, email, message, created_at
		FROM contacts
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var records []contact.Record
	for rows.Next() {
		var rec contact.Record
		var created string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Message, &created); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		records = append(records, rec)
	}
	return records, rows.Err()
}
