package repository

import (
	"path/filepath"
	"testing"
	"time"

	"momentary/internal/database"
)

// testDB opens a throwaway sqlite database with the full schema applied
func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestParticipantUpsertAndLookup(t *testing.T) {
	db := testDB(t)
	repo := NewParticipantRepository(db)

	id, err := repo.Upsert(111, "alice")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id == 0 {
		t.Fatal("Upsert() returned zero id")
	}

	// Upserting again updates the username without creating a new row
	id2, err := repo.Upsert(111, "alice_renamed")
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if id2 != id {
		t.Errorf("second Upsert() id = %d, want %d", id2, id)
	}

	participant, err := repo.GetByTelegramID(111)
	if err != nil {
		t.Fatalf("GetByTelegramID() error = %v", err)
	}
	if participant == nil {
		t.Fatal("GetByTelegramID() returned nil for existing participant")
	}
	if participant.Username != "alice_renamed" {
		t.Errorf("Username = %q, want alice_renamed", participant.Username)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestParticipantLookupMissing(t *testing.T) {
	db := testDB(t)
	repo := NewParticipantRepository(db)

	participant, err := repo.GetByTelegramID(999)
	if err != nil {
		t.Fatalf("GetByTelegramID() error = %v", err)
	}
	if participant != nil {
		t.Errorf("GetByTelegramID() = %+v, want nil for unknown id", participant)
	}
}

func TestParticipantDeleteRemovesPhotos(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantRepository(db)
	photos := NewPhotoRepository(db)

	id, err := participants.Upsert(222, "bob")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := photos.Add(id, time.Now().UTC(), "user_222/20240310_120000_abcd1234.jpg"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	deleted, err := participants.Delete(222)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Fatal("Delete() = false for existing participant")
	}

	total, err := photos.CountTotal()
	if err != nil {
		t.Fatalf("CountTotal() error = %v", err)
	}
	if total != 0 {
		t.Errorf("photo count after delete = %d, want 0", total)
	}

	deleted, err = participants.Delete(222)
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if deleted {
		t.Error("Delete() = true for already deleted participant")
	}
}

func TestPhotoListNewestFirst(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantRepository(db)
	photos := NewPhotoRepository(db)

	id, err := participants.Upsert(333, "carol")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		capturedAt := base.Add(time.Duration(i) * time.Hour)
		if _, err := photos.Add(id, capturedAt, "key"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	list, err := photos.ListForParticipant(id)
	if err != nil {
		t.Fatalf("ListForParticipant() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CapturedAt.After(list[i-1].CapturedAt) {
			t.Errorf("photos not ordered newest first: %v before %v", list[i-1].CapturedAt, list[i].CapturedAt)
		}
	}
}

func TestBanLifecycle(t *testing.T) {
	db := testDB(t)
	repo := NewBanRepository(db)

	banned, err := repo.IsBanned(444)
	if err != nil {
		t.Fatalf("IsBanned() error = %v", err)
	}
	if banned {
		t.Error("IsBanned() = true before any ban")
	}

	if err := repo.Ban(444, "spam"); err != nil {
		t.Fatalf("Ban() error = %v", err)
	}
	// Banning again updates the reason instead of failing
	if err := repo.Ban(444, "more spam"); err != nil {
		t.Fatalf("repeat Ban() error = %v", err)
	}

	banned, err = repo.IsBanned(444)
	if err != nil {
		t.Fatalf("IsBanned() error = %v", err)
	}
	if !banned {
		t.Error("IsBanned() = false after Ban()")
	}

	ids, err := repo.BannedIDs()
	if err != nil {
		t.Fatalf("BannedIDs() error = %v", err)
	}
	if !ids[444] {
		t.Error("BannedIDs() missing 444")
	}

	if err := repo.Unban(444); err != nil {
		t.Fatalf("Unban() error = %v", err)
	}
	banned, err = repo.IsBanned(444)
	if err != nil {
		t.Fatalf("IsBanned() error = %v", err)
	}
	if banned {
		t.Error("IsBanned() = true after Unban()")
	}
}

func TestPromptStateRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewPromptRepository(db)

	// Fresh schema has empty singletons
	last, err := repo.LastPrompt()
	if err != nil {
		t.Fatalf("LastPrompt() error = %v", err)
	}
	if last != nil {
		t.Errorf("LastPrompt() = %v on a fresh database, want nil", last)
	}
	next, err := repo.NextPrompt()
	if err != nil {
		t.Fatalf("NextPrompt() error = %v", err)
	}
	if next != nil {
		t.Errorf("NextPrompt() = %v on a fresh database, want nil", next)
	}

	promptTime := time.Date(2024, 3, 10, 17, 42, 0, 0, time.UTC)
	if err := repo.SetLastPrompt(promptTime); err != nil {
		t.Fatalf("SetLastPrompt() error = %v", err)
	}
	last, err = repo.LastPrompt()
	if err != nil {
		t.Fatalf("LastPrompt() error = %v", err)
	}
	if last == nil || !last.Equal(promptTime) {
		t.Errorf("LastPrompt() = %v, want %v", last, promptTime)
	}

	target := promptTime.AddDate(0, 0, 1)
	if err := repo.SetNextPrompt(&target); err != nil {
		t.Fatalf("SetNextPrompt() error = %v", err)
	}
	next, err = repo.NextPrompt()
	if err != nil {
		t.Fatalf("NextPrompt() error = %v", err)
	}
	if next == nil || !next.Equal(target) {
		t.Errorf("NextPrompt() = %v, want %v", next, target)
	}

	if err := repo.SetNextPrompt(nil); err != nil {
		t.Fatalf("SetNextPrompt(nil) error = %v", err)
	}
	next, err = repo.NextPrompt()
	if err != nil {
		t.Fatalf("NextPrompt() error = %v", err)
	}
	if next != nil {
		t.Errorf("NextPrompt() = %v after clearing, want nil", next)
	}
}

func TestPromptHistoryPrune(t *testing.T) {
	db := testDB(t)
	repo := NewPromptRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 1450; i++ {
		if err := repo.AddHistory(base.Add(time.Duration(i) * time.Minute)); err != nil {
			t.Fatalf("AddHistory() error = %v", err)
		}
	}

	if err := repo.PruneHistory(1439); err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}

	count, err := repo.CountHistory()
	if err != nil {
		t.Fatalf("CountHistory() error = %v", err)
	}
	if count != 1439 {
		t.Errorf("history count after prune = %d, want 1439", count)
	}

	// The newest entries survive: minute 1449 maps to 1449-1440=9 past
	// midnight of day two, so 9 must be among the most recent minutes
	minutes, err := repo.RecentMinutes(1)
	if err != nil {
		t.Fatalf("RecentMinutes() error = %v", err)
	}
	if len(minutes) != 1 || minutes[0] != 9 {
		t.Errorf("RecentMinutes(1) = %v, want [9]", minutes)
	}
}

func TestRecentMinutesLimit(t *testing.T) {
	db := testDB(t)
	repo := NewPromptRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if err := repo.AddHistory(base.Add(time.Duration(i) * time.Minute)); err != nil {
			t.Fatalf("AddHistory() error = %v", err)
		}
	}

	minutes, err := repo.RecentMinutes(3)
	if err != nil {
		t.Fatalf("RecentMinutes() error = %v", err)
	}
	if len(minutes) != 3 {
		t.Fatalf("len(minutes) = %d, want 3", len(minutes))
	}
}

func TestRegistrationsFlag(t *testing.T) {
	db := testDB(t)
	repo := NewSettingsRepository(db)

	open, err := repo.RegistrationsOpen()
	if err != nil {
		t.Fatalf("RegistrationsOpen() error = %v", err)
	}
	if !open {
		t.Error("registrations closed on a fresh database, want open")
	}

	if err := repo.SetRegistrationsOpen(false); err != nil {
		t.Fatalf("SetRegistrationsOpen(false) error = %v", err)
	}
	open, err = repo.RegistrationsOpen()
	if err != nil {
		t.Fatalf("RegistrationsOpen() error = %v", err)
	}
	if open {
		t.Error("registrations still open after closing")
	}
}

func TestAccountCreateAndBan(t *testing.T) {
	db := testDB(t)
	repo := NewAccountRepository(db)

	account, err := repo.Create("webuser", "$2a$10$hash", false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if account.ID == 0 {
		t.Fatal("Create() returned zero id")
	}

	found, err := repo.GetByUsername("webuser")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found == nil || found.ID != account.ID {
		t.Fatalf("GetByUsername() = %+v, want account %d", found, account.ID)
	}
	if found.IsBanned {
		t.Error("new account is banned")
	}

	if err := repo.SetBanned(account.ID, true); err != nil {
		t.Fatalf("SetBanned() error = %v", err)
	}
	found, err = repo.GetByUsername("webuser")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if !found.IsBanned {
		t.Error("account not banned after SetBanned(true)")
	}
}
