package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"internship_tracker/internal/domain/notification"
	dtelegram "internship_tracker/internal/domain/telegram"
	"internship_tracker/internal/domain/user"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Notifier delivers events to the recipient's linked Telegram chat. Users
// without a linked chat are skipped.
type Notifier struct {
	client dtelegram.Client
	users  user.Repository
	log    *logrus.Entry
}

var _ notification.Notifier = (*Notifier)(nil)

func NewNotifier(client dtelegram.Client, users user.Repository, log *logrus.Entry) *Notifier {
	return &Notifier{client: client, users: users, log: log}
}

func (n *Notifier) Notify(ctx context.Context, recipientID int64, event notification.EventType, payload notification.Payload) error {
	u, err := n.users.GetByID(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("telegram notifier: resolve recipient %d: %w", recipientID, err)
	}
	if u.TelegramChatID == nil {
		return nil
	}

	options := &telebot.SendOptions{}
	if event == notification.EventOfferCreated || event == notification.EventOfferDeadlineReminder {
		if offerID, ok := payloadID(payload, "offer_id"); ok && u.Role == user.RoleStudent {
			options.ReplyMarkup = offerKeyboard(offerID)
		}
	}

	if err := n.client.SendMessage(*u.TelegramChatID, FormatMessage(event, payload), options); err != nil {
		if errors.Is(err, dtelegram.ErrChatUnavailable) {
			// the user keeps the in-app inbox; relinking a chat resumes delivery
			n.log.WithError(err).WithField("recipient_id", recipientID).Warn("Telegram chat unavailable, skipping")
			return nil
		}
		return fmt.Errorf("telegram notifier: send to user %d: %w", recipientID, err)
	}
	n.log.WithFields(logrus.Fields{"recipient_id": recipientID, "event": event}).Debug("Telegram notification sent")
	return nil
}

func offerKeyboard(offerID int64) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	btnAccept := markup.Data("Accept", dtelegram.OfferCallbackData(dtelegram.OfferActionAccept, offerID))
	btnDecline := markup.Data("Decline", dtelegram.OfferCallbackData(dtelegram.OfferActionDecline, offerID))
	markup.Inline(markup.Row(btnAccept, btnDecline))
	return markup
}

// FormatMessage renders an event as a short chat message.
func FormatMessage(event notification.EventType, p notification.Payload) string {
	appID := p["application_id"]
	switch event {
	case notification.EventApplicationCreated:
		return fmt.Sprintf("Application #%v for internship #%v was submitted.", appID, p["internship_id"])
	case notification.EventStatusChanged:
		return fmt.Sprintf("Application #%v moved from %v to %v.", appID, p["from"], p["to"])
	case notification.EventStepCompleted:
		return fmt.Sprintf("Application #%v: step %q completed.", appID, p["step_name"])
	case notification.EventInterviewScheduled:
		return fmt.Sprintf("Interview for application #%v scheduled at %v (%v).", appID, p["scheduled_datetime"], p["mode"])
	case notification.EventInterviewStatus:
		return fmt.Sprintf("Interview #%v for application #%v is now %v.", p["interview_id"], appID, p["status"])
	case notification.EventFeedbackRecorded:
		return fmt.Sprintf("Feedback was recorded for interview #%v.", p["interview_id"])
	case notification.EventOfferCreated:
		return fmt.Sprintf("You received an offer for application #%v. Please respond by %v.", appID, p["response_deadline"])
	case notification.EventOfferStatus:
		return fmt.Sprintf("Offer #%v is now %v.", p["offer_id"], p["offer_status"])
	case notification.EventResumeViewed:
		return fmt.Sprintf("Your resume for application #%v was viewed.", appID)
	case notification.EventInterviewReminder:
		msg := fmt.Sprintf("Reminder: interview for application #%v at %v.", appID, p["scheduled_datetime"])
		if loc, ok := p["location"]; ok {
			msg += fmt.Sprintf(" Location: %v.", loc)
		}
		return msg
	case notification.EventOfferDeadlineReminder:
		return fmt.Sprintf("Reminder: the offer for application #%v expires at %v.", appID, p["response_deadline"])
	}

	var b strings.Builder
	b.WriteString(string(event))
	for k, v := range p {
		fmt.Fprintf(&b, "\n%s: %v", k, v)
	}
	return b.String()
}

// payloadID reads an identifier that may be an int64 (in-process payloads)
// or a float64 or string (payloads decoded from JSON).
func payloadID(p notification.Payload, key string) (int64, bool) {
	switch v := p[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	}
	return 0, false
}
