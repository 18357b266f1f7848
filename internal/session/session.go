// Package session keeps per-visitor state for the lifetime of the process:
// the personal details a visitor must provide before asking for
// recommendations, and any feedback they leave. Nothing is written to disk.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Sentinel errors.
var (
	ErrNotFound        = errors.New("session not found")
	ErrProfileRequired = errors.New("personal details required")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrEmptyFeedback   = errors.New("feedback is empty")
)

// Profile holds a visitor's personal details. Every field is required.
type Profile struct {
	Name        string `json:"name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"required,oneof=Male Female Other"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Address     string `json:"address" validate:"required"`
}

// Feedback is one free-text comment.
type Feedback struct {
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one visitor's state.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	profile   *Profile
}

// Store is an in-memory session store safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	feedback []Feedback
	validate *validator.Validate
	now      func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		validate: validator.New(),
		now:      time.Now,
	}
}

// Create starts a new session.
func (s *Store) Create() Session {
	sess := &Session{ID: uuid.New().String(), CreatedAt: s.now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return Session{ID: sess.ID, CreatedAt: sess.CreatedAt}
}

// SaveProfile validates p and attaches it to the session, replacing any
// previous profile.
func (s *Store) SaveProfile(id string, p Profile) error {
	p = trimProfile(p)
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, describe(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.profile = &p
	return nil
}

// Profile returns the session's saved profile, or ErrProfileRequired if the
// visitor has not provided one yet.
func (s *Store) Profile(id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if sess.profile == nil {
		return Profile{}, ErrProfileRequired
	}
	return *sess.profile, nil
}

// AddFeedback records a comment against an existing session.
func (s *Store) AddFeedback(id, text string) (Feedback, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Feedback{}, ErrEmptyFeedback
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return Feedback{}, ErrNotFound
	}
	fb := Feedback{SessionID: id, Text: text, CreatedAt: s.now().UTC()}
	s.feedback = append(s.feedback, fb)
	return fb, nil
}

// Feedback returns a copy of all recorded feedback in arrival order.
func (s *Store) Feedback() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Feedback, len(s.feedback))
	copy(out, s.feedback)
	return out
}

func trimProfile(p Profile) Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.DateOfBirth = strings.TrimSpace(p.DateOfBirth)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	return p
}

// describe flattens validator errors into "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fe.Field() + ": " + fe.Tag()
	}
	return strings.Join(parts, ", ")
}
