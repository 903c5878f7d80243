package telegram

import (
	"errors"
	"fmt"

	dtelegram "internship_tracker/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

var _ dtelegram.Client = (*TelebotAdapter)(nil)

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the chat. Chats that can no longer be
// reached are reported as dtelegram.ErrChatUnavailable.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := tba.bot.Send(telebot.ChatID(chatID), text, options)
	if err == nil {
		return nil
	}
	if unreachable(err) {
		return fmt.Errorf("chat %d: %w: %v", chatID, dtelegram.ErrChatUnavailable, err)
	}
	return fmt.Errorf("sending to chat %d: %w", chatID, err)
}

func unreachable(err error) bool {
	return errors.Is(err, telebot.ErrBlockedByUser) ||
		errors.Is(err, telebot.ErrChatNotFound) ||
		errors.Is(err, telebot.ErrUserIsDeactivated) ||
		errors.Is(err, telebot.ErrKickedFromGroup)
}
