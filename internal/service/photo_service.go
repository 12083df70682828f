package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"momentary/internal/models"
	"momentary/internal/repository"
	"momentary/internal/scheduler"
	"momentary/internal/storage"
)

var (
	// ErrNoActivePrompt is returned when a photo arrives before any prompt
	// has been sent
	ErrNoActivePrompt = errors.New("no prompt is active")
	// ErrWindowClosed is returned when a photo arrives after the capture
	// window has elapsed
	ErrWindowClosed = errors.New("capture window has closed")
)

// PhotoView is a photo record paired with a presigned download URL
type PhotoView struct {
	ID         int64     `json:"id"`
	CapturedAt time.Time `json:"captured_at"`
	URL        string    `json:"url"`
}

// PhotoService handles photo submission and retrieval
type PhotoService struct {
	photoRepo       *repository.PhotoRepository
	participantRepo *repository.ParticipantRepository
	promptRepo      *repository.PromptRepository
	banRepo         *repository.BanRepository
	store           *storage.ObjectStore
	window          time.Duration
	now             func() time.Time
}

// NewPhotoService creates a new photo service
func NewPhotoService(
	photoRepo *repository.PhotoRepository,
	participantRepo *repository.ParticipantRepository,
	promptRepo *repository.PromptRepository,
	banRepo *repository.BanRepository,
	store *storage.ObjectStore,
	window time.Duration,
) *PhotoService {
	return &PhotoService{
		photoRepo:       photoRepo,
		participantRepo: participantRepo,
		promptRepo:      promptRepo,
		banRepo:         banRepo,
		store:           store,
		window:          window,
		now:             time.Now,
	}
}

// Submit stores a photo for a Telegram user if it arrives within the capture
// window of the most recent prompt. Unknown senders are registered on the fly.
func (s *PhotoService) Submit(ctx context.Context, telegramID int64, username string, data []byte, contentType string) (*models.Photo, error) {
	banned, err := s.banRepo.IsBanned(telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ban: %w", err)
	}
	if banned {
		return nil, ErrBanned
	}

	lastPrompt, err := s.promptRepo.LastPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to load last prompt: %w", err)
	}
	if lastPrompt == nil {
		return nil, ErrNoActivePrompt
	}

	now := s.now().UTC()
	if !scheduler.WithinWindow(now, lastPrompt, s.window) {
		return nil, ErrWindowClosed
	}

	participant, err := s.participantRepo.GetByTelegramID(telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	var participantID int64
	if participant == nil {
		participantID, err = s.participantRepo.Upsert(telegramID, username)
		if err != nil {
			return nil, fmt.Errorf("failed to register sender: %w", err)
		}
	} else {
		participantID = participant.ID
	}

	key := objectKey(telegramID, now)
	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photoID, err := s.photoRepo.Add(participantID, now, key)
	if err != nil {
		return nil, fmt.Errorf("failed to record photo: %w", err)
	}
	return &models.Photo{
		ID:            photoID,
		ParticipantID: participantID,
		CapturedAt:    now,
		ObjectKey:     key,
	}, nil
}

// ListForTelegramID returns a user's photos, newest first, each with a
// presigned URL. Unknown users get an empty list.
func (s *PhotoService) ListForTelegramID(ctx context.Context, telegramID int64) ([]PhotoView, error) {
	participant, err := s.participantRepo.GetByTelegramID(telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	if participant == nil {
		return []PhotoView{}, nil
	}

	photos, err := s.photoRepo.ListForParticipant(participant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		views = append(views, PhotoView{
			ID:         p.ID,
			CapturedAt: p.CapturedAt,
			URL:        s.store.PresignedURL(ctx, p.ObjectKey),
		})
	}
	return views, nil
}

// objectKey builds a per-user key with a short random suffix to avoid
// collisions within the same second
func objectKey(telegramID int64, t time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("user_%d/%s_%s.jpg", telegramID, t.Format("20060102_150405"), suffix)
}
