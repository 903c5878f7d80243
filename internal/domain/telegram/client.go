package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"
)

// Client sends messages to a Telegram chat. It keeps the app layer
// independent of the bot library's transport.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}

// ErrChatUnavailable is returned by a Client when the chat can no longer be
// reached, e.g. the user blocked the bot or deleted the chat.
var ErrChatUnavailable = errors.New("telegram chat unavailable")

// Offer reply buttons carry "offer_<action>_<offerID>" as callback data.
const (
	OfferActionAccept  = "accept"
	OfferActionDecline = "decline"
)

func OfferCallbackData(action string, offerID int64) string {
	return fmt.Sprintf("offer_%s_%d", action, offerID)
}

// ParseOfferCallback is the inverse of OfferCallbackData.
func ParseOfferCallback(data string) (action string, offerID int64, err error) {
	// telebot prefixes inline button data with \f
	parts := strings.Split(strings.TrimPrefix(data, "\f"), "_")
	if len(parts) != 3 || parts[0] != "offer" {
		return "", 0, fmt.Errorf("invalid offer callback data: %q", data)
	}
	if parts[1] != OfferActionAccept && parts[1] != OfferActionDecline {
		return "", 0, fmt.Errorf("unknown offer action %q", parts[1])
	}
	offerID, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid offer id in callback %q: %w", data, err)
	}
	return parts[1], offerID, nil
}
