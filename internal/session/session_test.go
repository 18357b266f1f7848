package session

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func validProfile() Profile {
	return Profile{
		Name:        "Asha",
		DateOfBirth: "1990-04-12",
		Gender:      "Female",
		Email:       "asha@example.com",
		Phone:       "+91 90000 00000",
		Address:     "12 Field Road",
	}
}

func TestStore_CreateUniqueIDs(t *testing.T) {
	s := NewStore()
	a := s.Create()
	b := s.Create()
	if a.ID == "" || b.ID == "" {
		t.Fatal("expected non-empty session IDs")
	}
	if a.ID == b.ID {
		t.Errorf("duplicate session ID %q", a.ID)
	}
}

func TestStore_ProfileRequiredBeforeSave(t *testing.T) {
	s := NewStore()
	sess := s.Create()

	if _, err := s.Profile(sess.ID); !errors.Is(err, ErrProfileRequired) {
		t.Fatalf("Profile() error = %v, want ErrProfileRequired", err)
	}
}

func TestStore_SaveAndGetProfile(t *testing.T) {
	s := NewStore()
	sess := s.Create()

	p := validProfile()
	p.Name = "  Asha  "
	if err := s.SaveProfile(sess.ID, p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	got, err := s.Profile(sess.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if got.Name != "Asha" {
		t.Errorf("Name = %q, want trimmed %q", got.Name, "Asha")
	}
}

func TestStore_SaveProfile_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{name: "missing name", mutate: func(p *Profile) { p.Name = "" }},
		{name: "blank address", mutate: func(p *Profile) { p.Address = "   " }},
		{name: "bad email", mutate: func(p *Profile) { p.Email = "not-an-email" }},
		{name: "bad gender", mutate: func(p *Profile) { p.Gender = "unknown" }},
		{name: "bad date", mutate: func(p *Profile) { p.DateOfBirth = "12/04/1990" }},
		{name: "missing phone", mutate: func(p *Profile) { p.Phone = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			sess := s.Create()
			p := validProfile()
			tt.mutate(&p)

			err := s.SaveProfile(sess.ID, p)
			if !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("SaveProfile() error = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestStore_UnknownSession(t *testing.T) {
	s := NewStore()

	if err := s.SaveProfile("nope", validProfile()); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveProfile() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Profile("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Profile() error = %v, want ErrNotFound", err)
	}
	if _, err := s.AddFeedback("nope", "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddFeedback() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Feedback(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	sess := s.Create()

	if _, err := s.AddFeedback(sess.ID, "   "); !errors.Is(err, ErrEmptyFeedback) {
		t.Fatalf("AddFeedback(blank) error = %v, want ErrEmptyFeedback", err)
	}

	fb, err := s.AddFeedback(sess.ID, " great tool ")
	if err != nil {
		t.Fatalf("AddFeedback() error = %v", err)
	}
	if fb.Text != "great tool" || !fb.CreatedAt.Equal(fixed) {
		t.Errorf("feedback = %+v", fb)
	}

	all := s.Feedback()
	if len(all) != 1 || all[0].SessionID != sess.ID {
		t.Fatalf("Feedback() = %+v", all)
	}

	// Returned slice is a copy.
	all[0].Text = "changed"
	if s.Feedback()[0].Text != "great tool" {
		t.Error("Feedback() exposed internal slice")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := s.Create()
			_ = s.SaveProfile(sess.ID, validProfile())
			_, _ = s.AddFeedback(sess.ID, "ok")
		}()
	}
	wg.Wait()

	if got := len(s.Feedback()); got != 20 {
		t.Errorf("feedback count = %d, want 20", got)
	}
}
