package contact_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edumarques81/stellar-hero/internal/domain/contact"
)

type fakeStore struct {
	records []contact.Record
	err     error
}

func (f *fakeStore) Insert(_ context.Context, rec contact.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func validForm() contact.Form {
	return contact.Form{
		Name:    "Budi",
		Email:   "budi@example.co.id",
		Message: "Please send the SCADA brochure.",
	}
}

func TestSubmitStoresRecord(t *testing.T) {
	store := &fakeStore{}
	svc := contact.NewService(store)

	rec, err := svc.Submit(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.records))
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Errorf("expected id and timestamp, got %+v", rec)
	}
	if store.records[0].Email != "budi@example.co.id" {
		t.Errorf("unexpected stored email %q", store.records[0].Email)
	}
}

func TestSubmitHoneypotDropped(t *testing.T) {
	store := &fakeStore{}
	svc := contact.NewService(store)

	form := validForm()
	form.Website = "http://spam.example"
	if _, err := svc.Submit(context.Background(), form); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(store.records) != 0 {
		t.Errorf("expected nothing stored, got %d records", len(store.records))
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*contact.Form)
	}{
		{"missing name", func(f *contact.Form) { f.Name = "  " }},
		{"missing email", func(f *contact.Form) { f.Email = "" }},
		{"bad email", func(f *contact.Form) { f.Email = "not-an-email" }},
		{"missing message", func(f *contact.Form) { f.Message = "" }},
		{"message too long", func(f *contact.Form) { f.Message = strings.Repeat("a", contact.MaxMessage+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			form := validForm()
			tt.mutate(&form)

			_, err := contact.NewService(store).Submit(context.Background(), form)
			if !errors.Is(err, contact.ErrInvalidForm) {
				t.Errorf("expected ErrInvalidForm, got %v", err)
			}
			if len(store.records) != 0 {
				t.Error("expected nothing stored")
			}
		})
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	storeErr := errors.New("disk full")
	svc := contact.NewService(&fakeStore{err: storeErr})

	_, err := svc.Submit(context.Background(), validForm())
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		message  string
		expected int
	}{
		{"", 2000},
		{"halo", 1996},
		{strings.Repeat("x", 2000), 0},
		{strings.Repeat("x", 2500), 0},
		{"é", 1999},
	}

	for _, tt := range tests {
		if got := contact.Remaining(tt.message); got != tt.expected {
			t.Errorf("Remaining(len %d) = %d, want %d", len(tt.message), got, tt.expected)
		}
	}
}
