// Package contact handles the contact form and the office directory.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxMessage is the longest accepted message, in characters.
const MaxMessage = 2000

// ErrInvalidForm is returned when a submission fails validation.
var ErrInvalidForm = errors.New("invalid contact form")

// Form is a submission as posted by the page.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	// Website is a honeypot field hidden from humans.
	Website string `json:"website"`
}

// Record is a stored submission.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists contact records.
type Store interface {
	Insert(ctx context.Context, rec Record) error
}

// Service validates and stores submissions.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a contact service backed by store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Submit validates form and stores it. A filled honeypot is accepted without
// being stored, so the sender sees a normal success.
func (s *Service) Submit(ctx context.Context, form Form) (Record, error) {
	if strings.TrimSpace(form.Website) != "" {
		log.Info().Msg("Contact form honeypot filled, dropping submission")
		return Record{}, nil
	}

	if err := Validate(form); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(form.Name),
		Email:     strings.TrimSpace(form.Email),
		Message:   form.Message,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("failed to store contact message: %w", err)
	}

	log.Info().Str("id", rec.ID).Msg("Contact message stored")
	return rec, nil
}

// Validate checks the required fields and the message length.
func Validate(form Form) error {
	if strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidForm)
	}
	email := strings.TrimSpace(form.Email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidForm)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrInvalidForm)
	}
	if strings.TrimSpace(form.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidForm)
	}
	if utf8.RuneCountInString(form.Message) > MaxMessage {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidForm, MaxMessage)
	}
	return nil
}

// Remaining returns how many characters are left for message.
func Remaining(message string) int {
	left := MaxMessage - utf8.RuneCountInString(message)
	if left < 0 {
		return 0
	}
	return left
}
