package scheduler

import (
	"context"
	"log"
	"math/rand"
	"time"

	"momentary/internal/models"
)

// PromptText is the daily broadcast message
const PromptText = "\U0001F4F8 Momentary time! Send a photo of what you're doing right now. You have 60 seconds."

// PromptStore persists schedule state and prompt history. The scheduler is
// the only writer of the next/last prompt instants.
type PromptStore interface {
	NextPrompt() (*time.Time, error)
	SetNextPrompt(target *time.Time) error
	LastPrompt() (*time.Time, error)
	SetLastPrompt(t time.Time) error
	AddHistory(t time.Time) error
	RecentMinutes(limit int) ([]int, error)
	PruneHistory(limit int) error
}

// ParticipantLister supplies the broadcast recipients
type ParticipantLister interface {
	GetAll() ([]models.Participant, error)
}

// BanLister supplies the set of Telegram ids excluded from broadcasts
type BanLister interface {
	BannedIDs() (map[int64]bool, error)
}

// Notifier delivers a prompt message to a single recipient
type Notifier interface {
	SendPrompt(chatID int64, text string) error
}

// Scheduler runs the daily prompt loop: pick and persist a random future
// target, sleep until it is due, broadcast, record history, repeat
type Scheduler struct {
	prompts      PromptStore
	participants ParticipantLister
	bans         BanLister
	notifier     Notifier
	historyLimit int

	now        func() time.Time
	rng        *rand.Rand
	retryDelay time.Duration
}

// New creates a scheduler. historyLimit bounds the retained prompt history
// (the avoidance set reads historyLimit-1 entries).
func New(prompts PromptStore, participants ParticipantLister, bans BanLister, notifier Notifier, historyLimit int) *Scheduler {
	return &Scheduler{
		prompts:      prompts,
		participants: participants,
		bans:         bans,
		notifier:     notifier,
		historyLimit: historyLimit,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		retryDelay:   5 * time.Second,
	}
}

// Run executes the prompt loop until ctx is cancelled. Store errors back
// off and retry; the loop never terminates on its own.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		target, err := s.NextTarget()
		if err != nil {
			log.Printf("scheduler: failed to determine next prompt: %v", err)
			if !s.sleep(ctx, s.retryDelay) {
				return
			}
			continue
		}

		delta := target.Sub(s.now())
		if delta < 0 {
			delta = 0
		}
		log.Printf("Next prompt scheduled for %s UTC", target.UTC().Format(time.RFC3339))

		if !s.sleep(ctx, delta) {
			return
		}
		s.Broadcast()
	}
}

// NextTarget returns the persisted next-prompt instant, computing and
// persisting a fresh one when none is stored or the stored one is stale.
// A restart therefore always resumes with a valid future target.
func (s *Scheduler) NextTarget() (time.Time, error) {
	now := s.now().UTC()

	target, err := s.prompts.NextPrompt()
	if err != nil {
		return time.Time{}, err
	}
	if target != nil && target.After(now) {
		return *target, nil
	}

	lastPrompt, err := s.prompts.LastPrompt()
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := s.prompts.RecentMinutes(s.historyLimit - 1)
	if err != nil {
		return time.Time{}, err
	}

	fresh := PickPromptTime(now, lastPrompt, minuteSet(minutes), s.rng)
	if err := s.prompts.SetNextPrompt(&fresh); err != nil {
		return time.Time{}, err
	}
	return fresh, nil
}

// Broadcast delivers the prompt to every non-banned participant and records
// the fired prompt. Per-recipient delivery failures are logged and skipped;
// they never abort the remaining sends or the loop.
func (s *Scheduler) Broadcast() {
	participants, err := s.participants.GetAll()
	if err != nil {
		log.Printf("scheduler: failed to list participants: %v", err)
		return
	}
	if len(participants) == 0 {
		log.Println("No registered participants to notify.")
		return
	}

	banned, err := s.bans.BannedIDs()
	if err != nil {
		log.Printf("scheduler: failed to load ban list: %v", err)
		return
	}

	var failures int
	for _, participant := range participants {
		if banned[participant.TelegramID] {
			continue
		}
		if err := s.notifier.SendPrompt(participant.TelegramID, PromptText); err != nil {
			failures++
			log.Printf("Failed to send prompt to %d: %v", participant.TelegramID, err)
		}
	}
	if failures > 0 {
		log.Printf("Prompt broadcast finished with %d delivery failure(s)", failures)
	}

	promptTime := s.now().UTC()
	if err := s.prompts.SetLastPrompt(promptTime); err != nil {
		log.Printf("scheduler: failed to persist last prompt: %v", err)
	}
	if err := s.prompts.AddHistory(promptTime); err != nil {
		log.Printf("scheduler: failed to record prompt history: %v", err)
	}
	if err := s.prompts.PruneHistory(s.historyLimit - 1); err != nil {
		log.Printf("scheduler: failed to prune prompt history: %v", err)
	}
}

// sleep blocks for d or until ctx is cancelled, reporting whether the full
// duration elapsed
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func minuteSet(minutes []int) map[int]bool {
	set := make(map[int]bool, len(minutes))
	for _, m := range minutes {
		set[m] = true
	}
	return set
}
