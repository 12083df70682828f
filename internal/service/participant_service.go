package service

import (
	"fmt"
	"time"

	"momentary/internal/models"
	"momentary/internal/repository"
)

// Stats summarizes the application state for the owner
type Stats struct {
	RegistrationsOpen bool
	Participants      int
	BannedUsers       int
	TotalPhotos       int
	HistoryEntries    int
	LastPrompt        *time.Time
	NextPrompt        *time.Time
}

// ParticipantService handles registration and moderation business logic
type ParticipantService struct {
	participantRepo *repository.ParticipantRepository
	photoRepo       *repository.PhotoRepository
	banRepo         *repository.BanRepository
	settingsRepo    *repository.SettingsRepository
	promptRepo      *repository.PromptRepository
}

// NewParticipantService creates a new participant service
func NewParticipantService(
	participantRepo *repository.ParticipantRepository,
	photoRepo *repository.PhotoRepository,
	banRepo *repository.BanRepository,
	settingsRepo *repository.SettingsRepository,
	promptRepo *repository.PromptRepository,
) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		photoRepo:       photoRepo,
		banRepo:         banRepo,
		settingsRepo:    settingsRepo,
		promptRepo:      promptRepo,
	}
}

// Register registers a Telegram user, reporting whether they were already
// registered. Banned users and, while registrations are closed, unknown
// users are rejected with sentinel errors.
func (s *ParticipantService) Register(telegramID int64, username string) (alreadyRegistered bool, err error) {
	banned, err := s.banRepo.IsBanned(telegramID)
	if err != nil {
		return false, fmt.Errorf("failed to check ban: %w", err)
	}
	if banned {
		return false, ErrBanned
	}

	existing, err := s.participantRepo.GetByTelegramID(telegramID)
	if err != nil {
		return false, fmt.Errorf("failed to look up participant: %w", err)
	}
	if existing != nil {
		// Refresh the stored username
		if _, err := s.participantRepo.Upsert(telegramID, username); err != nil {
			return false, fmt.Errorf("failed to update participant: %w", err)
		}
		return true, nil
	}

	open, err := s.settingsRepo.RegistrationsOpen()
	if err != nil {
		return false, fmt.Errorf("failed to check registration state: %w", err)
	}
	if !open {
		return false, ErrRegistrationsClosed
	}

	if _, err := s.participantRepo.Upsert(telegramID, username); err != nil {
		return false, fmt.Errorf("failed to register participant: %w", err)
	}
	return false, nil
}

// Ban bans a Telegram id with an optional reason
func (s *ParticipantService) Ban(telegramID int64, reason string) error {
	return s.banRepo.Ban(telegramID, reason)
}

// Unban lifts a ban
func (s *ParticipantService) Unban(telegramID int64) error {
	return s.banRepo.Unban(telegramID)
}

// Delete removes a participant and their photo records, reporting whether
// the participant existed
func (s *ParticipantService) Delete(telegramID int64) (bool, error) {
	return s.participantRepo.Delete(telegramID)
}

// Lookup returns a participant together with their photo count and ban state
func (s *ParticipantService) Lookup(telegramID int64) (*models.Participant, int, bool, error) {
	participant, err := s.participantRepo.GetByTelegramID(telegramID)
	if err != nil {
		return nil, 0, false, err
	}
	if participant == nil {
		return nil, 0, false, nil
	}

	photoCount, err := s.photoRepo.CountForParticipant(participant.ID)
	if err != nil {
		return nil, 0, false, err
	}
	banned, err := s.banRepo.IsBanned(telegramID)
	if err != nil {
		return nil, 0, false, err
	}
	return participant, photoCount, banned, nil
}

// ListWithPhotoCounts returns all participants with photo counts plus the ban set
func (s *ParticipantService) ListWithPhotoCounts() ([]models.ParticipantWithPhotoCount, map[int64]bool, error) {
	participants, err := s.participantRepo.GetAllWithPhotoCounts()
	if err != nil {
		return nil, nil, err
	}
	banned, err := s.banRepo.BannedIDs()
	if err != nil {
		return nil, nil, err
	}
	return participants, banned, nil
}

// Stats gathers overall application statistics
func (s *ParticipantService) Stats() (*Stats, error) {
	open, err := s.settingsRepo.RegistrationsOpen()
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.Count()
	if err != nil {
		return nil, err
	}
	bannedCount, err := s.banRepo.Count()
	if err != nil {
		return nil, err
	}
	photos, err := s.photoRepo.CountTotal()
	if err != nil {
		return nil, err
	}
	history, err := s.promptRepo.CountHistory()
	if err != nil {
		return nil, err
	}
	lastPrompt, err := s.promptRepo.LastPrompt()
	if err != nil {
		return nil, err
	}
	nextPrompt, err := s.promptRepo.NextPrompt()
	if err != nil {
		return nil, err
	}

	return &Stats{
		RegistrationsOpen: open,
		Participants:      participants,
		BannedUsers:       bannedCount,
		TotalPhotos:       photos,
		HistoryEntries:    history,
		LastPrompt:        lastPrompt,
		NextPrompt:        nextPrompt,
	}, nil
}

// RegistrationsOpen reads the registrations flag
func (s *ParticipantService) RegistrationsOpen() (bool, error) {
	return s.settingsRepo.RegistrationsOpen()
}

// SetRegistrationsOpen toggles the registrations flag
func (s *ParticipantService) SetRegistrationsOpen(open bool) error {
	return s.settingsRepo.SetRegistrationsOpen(open)
}
