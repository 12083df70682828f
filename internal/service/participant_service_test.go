package service

import (
	"errors"
	"path/filepath"
	"testing"

	"momentary/internal/database"
	"momentary/internal/repository"
)

func newTestParticipantService(t *testing.T) *ParticipantService {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewParticipantService(
		repository.NewParticipantRepository(db),
		repository.NewPhotoRepository(db),
		repository.NewBanRepository(db),
		repository.NewSettingsRepository(db),
		repository.NewPromptRepository(db),
	)
}

func TestRegisterNewAndExisting(t *testing.T) {
	svc := newTestParticipantService(t)

	already, err := svc.Register(100, "dora")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if already {
		t.Error("Register() reported a fresh user as already registered")
	}

	already, err = svc.Register(100, "dora_renamed")
	if err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
	if !already {
		t.Error("Register() did not report an existing user")
	}

	participant, _, _, err := svc.Lookup(100)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if participant == nil || participant.Username != "dora_renamed" {
		t.Errorf("Lookup() = %+v, want username dora_renamed", participant)
	}
}

func TestRegisterBannedRejected(t *testing.T) {
	svc := newTestParticipantService(t)

	if err := svc.Ban(100, "spam"); err != nil {
		t.Fatalf("Ban() error = %v", err)
	}
	if _, err := svc.Register(100, "dora"); !errors.Is(err, ErrBanned) {
		t.Errorf("Register() error = %v, want ErrBanned", err)
	}
}

func TestRegisterClosedBlocksNewUsersOnly(t *testing.T) {
	svc := newTestParticipantService(t)

	if _, err := svc.Register(100, "dora"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := svc.SetRegistrationsOpen(false); err != nil {
		t.Fatalf("SetRegistrationsOpen() error = %v", err)
	}

	// Existing users can still re-register while closed
	if _, err := svc.Register(100, "dora"); err != nil {
		t.Errorf("Register() of existing user while closed: error = %v", err)
	}

	if _, err := svc.Register(200, "newcomer"); !errors.Is(err, ErrRegistrationsClosed) {
		t.Errorf("Register() of new user while closed: error = %v, want ErrRegistrationsClosed", err)
	}
}

func TestStatsCounts(t *testing.T) {
	svc := newTestParticipantService(t)

	if _, err := svc.Register(100, "dora"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(200, "ed"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := svc.Ban(300, ""); err != nil {
		t.Fatalf("Ban() error = %v", err)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Participants != 2 {
		t.Errorf("Participants = %d, want 2", stats.Participants)
	}
	if stats.BannedUsers != 1 {
		t.Errorf("BannedUsers = %d, want 1", stats.BannedUsers)
	}
	if !stats.RegistrationsOpen {
		t.Error("RegistrationsOpen = false on a fresh database")
	}
	if stats.LastPrompt != nil || stats.NextPrompt != nil {
		t.Error("prompt timestamps set on a fresh database")
	}
}
