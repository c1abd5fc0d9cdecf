// Package platform adapts Telegram to the core's event/sender seam. The
// core addresses channels by name; this adapter learns the name→chat-id
// mapping from traffic and can be seeded from config for outbound-only
// channels the bot has not heard from yet.
package platform

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"commandant/internal/handlers"
)

type Telegram struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger

	mu    sync.RWMutex
	chats map[string]int64 // channel name -> chat id
}

// NewTelegram builds the adapter. seeds maps channel names to chat ids known
// ahead of time (the leaderboard and goals channels, typically).
func NewTelegram(bot *tgbotapi.BotAPI, seeds map[string]int64, log zerolog.Logger) *Telegram {
	chats := make(map[string]int64, len(seeds))
	for name, id := range seeds {
		if id != 0 {
			chats[name] = id
		}
	}
	return &Telegram{bot: bot, log: log, chats: chats}
}

// Send posts text into the named channel.
func (t *Telegram) Send(channel, text string) error {
	t.mu.RLock()
	chatID, ok := t.chats[channel]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("telegram: no chat known for channel %q", channel)
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// EventFrom reduces an inbound message to a core event and remembers which
// chat the channel name belongs to.
func (t *Telegram) EventFrom(msg *tgbotapi.Message) handlers.Event {
	channel := channelName(msg.Chat)
	t.mu.Lock()
	if _, known := t.chats[channel]; !known {
		t.chats[channel] = msg.Chat.ID
		t.log.Debug().Str("channel", channel).Int64("chat_id", msg.Chat.ID).Msg("channel mapped")
	}
	t.mu.Unlock()

	ev := handlers.Event{Channel: channel, Text: msg.Text}
	if msg.From != nil {
		ev.UserID = strconv.FormatInt(msg.From.ID, 10)
		ev.UserName = displayName(msg.From)
	}
	return ev
}

func channelName(chat *tgbotapi.Chat) string {
	if chat == nil {
		return ""
	}
	if chat.UserName != "" {
		return strings.ToLower(chat.UserName)
	}
	return strings.ToLower(strings.ReplaceAll(chat.Title, " ", "-"))
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
