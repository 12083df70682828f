package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"momentary/internal/service"
)

// usersChunkLines caps how many lines go into a single /users reply so
// long user lists stay under Telegram's message size limit
const usersChunkLines = 40

// Bot wraps the Telegram Bot API with the command and photo handlers
type Bot struct {
	api          *tgbotapi.BotAPI
	ownerID      int64
	participants *service.ParticipantService
	photos       *service.PhotoService
	httpClient   *http.Client
}

// New connects to the Telegram Bot API
func New(token string, ownerID int64, participants *service.ParticipantService, photos *service.PhotoService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	log.Printf("Telegram bot authorized as @%s", api.Self.UserName)

	return &Bot{
		api:          api,
		ownerID:      ownerID,
		participants: participants,
		photos:       photos,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SendPrompt delivers text to a chat. It satisfies the scheduler's
// notifier interface.
func (b *Bot) SendPrompt(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Run polls for updates until the context is cancelled
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("Telegram bot started.")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Println("Telegram bot stopped.")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}
	if !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "whoami":
		b.reply(msg, fmt.Sprintf("Your Telegram user id is %d. Chat id is %d.", msg.From.ID, msg.Chat.ID))
	case "commandlist":
		b.ownerOnly(msg, b.handleCommandList)
	case "prompts":
		b.ownerOnly(msg, b.handlePrompts)
	case "users":
		b.ownerOnly(msg, b.handleUsers)
	case "user":
		b.ownerOnly(msg, b.handleUser)
	case "ban":
		b.ownerOnly(msg, b.handleBan)
	case "unban":
		b.ownerOnly(msg, b.handleUnban)
	case "delete_user":
		b.ownerOnly(msg, b.handleDeleteUser)
	case "stats":
		b.ownerOnly(msg, b.handleStats)
	case "registrations":
		b.ownerOnly(msg, b.handleRegistrations)
	case "open_registrations":
		b.ownerOnly(msg, b.handleOpenRegistrations)
	case "close_registrations":
		b.ownerOnly(msg, b.handleCloseRegistrations)
	}
}

func (b *Bot) ownerOnly(msg *tgbotapi.Message, handler func(*tgbotapi.Message)) {
	if b.ownerID == 0 {
		b.reply(msg, "Bot owner is not configured. Set TELEGRAM_OWNER_ID and try again.")
		return
	}
	if msg.From.ID != b.ownerID {
		b.reply(msg, "This command is for the bot owner only.")
		return
	}
	handler(msg)
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	already, err := b.participants.Register(msg.Chat.ID, msg.From.UserName)
	switch {
	case errors.Is(err, service.ErrBanned):
		b.reply(msg, "You are banned from this app.")
	case errors.Is(err, service.ErrRegistrationsClosed):
		b.reply(msg, "Registrations are currently closed. Please contact the bot owner to be added.")
	case err != nil:
		log.Printf("Failed to register %d: %v", msg.Chat.ID, err)
		b.reply(msg, "Something went wrong. Please try again later.")
	case already:
		b.reply(msg, fmt.Sprintf("You're already registered. You'll get a daily random prompt. your user id is %d.", msg.Chat.ID))
	default:
		b.reply(msg, fmt.Sprintf("Registration successful! You'll get a daily random prompt. When it arrives, reply with a photo within 60 seconds to save it. Your User Id is %d.", msg.Chat.ID))
	}
}

func (b *Bot) handleCommandList(msg *tgbotapi.Message) {
	b.reply(msg, strings.Join([]string{
		"Owner commands:",
		"/registrations - show open/closed",
		"/open_registrations - open registrations",
		"/close_registrations - close registrations",
		"/prompts - show last/next prompt",
		"/users - list users + photo counts",
		"/user <telegram_id> - user details + photo count",
		"/ban <telegram_id> [reason] - ban user",
		"/unban <telegram_id> - unban user",
		"/delete_user <telegram_id> - delete user (removes their DB photo records)",
		"/stats - overall app stats",
	}, "\n"))
}

func (b *Bot) handlePrompts(msg *tgbotapi.Message) {
	stats, err := b.participants.Stats()
	if err != nil {
		log.Printf("Failed to load prompt state: %v", err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}

	var until time.Duration
	if stats.NextPrompt != nil {
		until = time.Until(*stats.NextPrompt)
	}
	b.reply(msg, strings.Join([]string{
		fmt.Sprintf("Last prompt: %s", formatDatetime(stats.LastPrompt)),
		fmt.Sprintf("Next prompt: %s", formatDatetime(stats.NextPrompt)),
		fmt.Sprintf("Time until next: %s", formatDuration(until)),
	}, "\n"))
}

func (b *Bot) handleUsers(msg *tgbotapi.Message) {
	users, bannedIDs, err := b.participants.ListWithPhotoCounts()
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}
	if len(users) == 0 {
		b.reply(msg, "No registered users.")
		return
	}

	lines := []string{fmt.Sprintf("Registered users: %d", len(users))}
	for _, u := range users {
		username := u.Username
		if username == "" {
			username = "—"
		}
		banned := ""
		if bannedIDs[u.TelegramID] {
			banned = " (BANNED)"
		}
		lines = append(lines, fmt.Sprintf("%d @%s photos:%d%s", u.TelegramID, username, u.PhotoCount, banned))
	}

	for start := 0; start < len(lines); start += usersChunkLines {
		end := start + usersChunkLines
		if end > len(lines) {
			end = len(lines)
		}
		b.reply(msg, strings.Join(lines[start:end], "\n"))
	}
}

func (b *Bot) handleUser(msg *tgbotapi.Message) {
	telegramID, ok := b.parseIDArg(msg, "Usage: /user <telegram_id>")
	if !ok {
		return
	}

	participant, photoCount, banned, err := b.participants.Lookup(telegramID)
	if err != nil {
		log.Printf("Failed to look up user %d: %v", telegramID, err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}
	if participant == nil {
		b.reply(msg, "User not found.")
		return
	}

	username := "username: —"
	if participant.Username != "" {
		username = fmt.Sprintf("username: @%s", participant.Username)
	}
	b.reply(msg, strings.Join([]string{
		fmt.Sprintf("telegram_id: %d", participant.TelegramID),
		username,
		fmt.Sprintf("created_at: %s", formatDatetime(&participant.CreatedAt)),
		fmt.Sprintf("photos: %d", photoCount),
		fmt.Sprintf("banned: %s", yesNo(banned)),
	}, "\n"))
}

func (b *Bot) handleBan(msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.reply(msg, "Usage: /ban <telegram_id> [reason]")
		return
	}
	telegramID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg, "telegram_id must be an integer.")
		return
	}

	reason := strings.TrimSpace(strings.Join(args[1:], " "))
	if err := b.participants.Ban(telegramID, reason); err != nil {
		log.Printf("Failed to ban %d: %v", telegramID, err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}
	text := fmt.Sprintf("Banned %d.", telegramID)
	if reason != "" {
		text += fmt.Sprintf(" Reason: %s", reason)
	}
	b.reply(msg, text)
}

func (b *Bot) handleUnban(msg *tgbotapi.Message) {
	telegramID, ok := b.parseIDArg(msg, "Usage: /unban <telegram_id>")
	if !ok {
		return
	}
	if err := b.participants.Unban(telegramID); err != nil {
		log.Printf("Failed to unban %d: %v", telegramID, err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}
	b.reply(msg, fmt.Sprintf("Unbanned %d.", telegramID))
}

func (b *Bot) handleDeleteUser(msg *tgbotapi.Message) {
	telegramID, ok := b.parseIDArg(msg, "Usage: /delete_user <telegram_id>")
	if !ok {
		return
	}
	deleted, err := b.participants.Delete(telegramID)
	if err != nil {
		log.Printf("Failed to delete user %d: %v", telegramID, err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}
	if !deleted {
		b.reply(msg, "User not found.")
		return
	}
	b.reply(msg, fmt.Sprintf("Deleted user %d and removed their photo records from the database.", telegramID))
}

func (b *Bot) handleStats(msg *tgbotapi.Message) {
	stats, err := b.participants.Stats()
	if err != nil {
		log.Printf("Failed to load stats: %v", err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}

	b.reply(msg, strings.Join([]string{
		fmt.Sprintf("registrations_open: %s", yesNo(stats.RegistrationsOpen)),
		fmt.Sprintf("users: %d", stats.Participants),
		fmt.Sprintf("banned_users: %d", stats.BannedUsers),
		fmt.Sprintf("total_photos: %d", stats.TotalPhotos),
		fmt.Sprintf("prompt_history_entries: %d", stats.HistoryEntries),
		fmt.Sprintf("last_prompt: %s", formatDatetime(stats.LastPrompt)),
		fmt.Sprintf("next_prompt: %s", formatDatetime(stats.NextPrompt)),
	}, "\n"))
}

func (b *Bot) handleRegistrations(msg *tgbotapi.Message) {
	open, err := b.participants.RegistrationsOpen()
	if err != nil {
		log.Printf("Failed to read registration state: %v", err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}
	state := "CLOSED"
	if open {
		state = "OPEN"
	}
	b.reply(msg, fmt.Sprintf("Registrations are currently %s.", state))
}

func (b *Bot) handleOpenRegistrations(msg *tgbotapi.Message) {
	if err := b.participants.SetRegistrationsOpen(true); err != nil {
		log.Printf("Failed to open registrations: %v", err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}
	b.reply(msg, "Registrations are now OPEN.")
}

func (b *Bot) handleCloseRegistrations(msg *tgbotapi.Message) {
	if err := b.participants.SetRegistrationsOpen(false); err != nil {
		log.Printf("Failed to close registrations: %v", err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}
	b.reply(msg, "Registrations are now CLOSED.")
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	// Telegram sends multiple sizes; the last one is the largest
	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		log.Printf("Failed to download photo from %d: %v", msg.Chat.ID, err)
		b.reply(msg, "Something went wrong. Please try again later.")
		return
	}

	_, err = b.photos.Submit(ctx, msg.Chat.ID, msg.From.UserName, data, "image/jpeg")
	switch {
	case errors.Is(err, service.ErrBanned):
		b.reply(msg, "You are banned from this app.")
	case errors.Is(err, service.ErrNoActivePrompt):
		b.reply(msg, "No prompt is active yet. Check back later!")
	case errors.Is(err, service.ErrWindowClosed):
		b.reply(msg, "Sorry, you missed the 60-second window. Try again next time.")
	case err != nil:
		log.Printf("Failed to save photo from %d: %v", msg.Chat.ID, err)
		b.reply(msg, "Something went wrong. Please try again later.")
	default:
		b.reply(msg, "Photo received! It's saved to your journal. ✅")
	}
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading file", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) parseIDArg(msg *tgbotapi.Message, usage string) (int64, bool) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.reply(msg, usage)
		return 0, false
	}
	telegramID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg, "telegram_id must be an integer.")
		return 0, false
	}
	return telegramID, true
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		log.Printf("Failed to send reply to %d: %v", msg.Chat.ID, err)
	}
}
