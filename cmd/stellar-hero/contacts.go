package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/edumarques81/stellar-hero/internal/domain/contact"
)

// contactReader is the part of the site database the listing reads.
type contactReader interface {
	CountContacts(ctx context.Context) (int, error)
	RecentContacts(ctx context.Context, limit int) ([]contact.Record, error)
}

type contactListing struct {
	Total    int              `json:"total"`
	Contacts []contact.Record `json:"contacts"`
}

// printContacts writes the newest submissions as indented JSON.
func printContacts(ctx context.Context, db contactReader, limit int, w io.Writer) error {
	total, err := db.CountContacts(ctx)
	if err != nil {
		return err
	}
	records, err := db.RecentContacts(ctx, limit)
	if err != nil {
		return err
	}
	if records == nil {
		records = []contact.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(contactListing{Total: total, Contacts: records}); err != nil {
		return fmt.Errorf("failed to write contacts: %w", err)
	}
	return nil
}
