package telegram

import (
	"context"
	"fmt"
	"strings"

	"internship_tracker/internal/app"
	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/offer"
	dtelegram "internship_tracker/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// BotHandlers answers chat commands and offer buttons on behalf of the user
// linked to the chat.
type BotHandlers struct {
	users        *app.UserService
	applications *app.ApplicationService
	tracking     *app.TrackingService
	log          *logrus.Entry
}

func NewBotHandlers(users *app.UserService, applications *app.ApplicationService, tracking *app.TrackingService, log *logrus.Entry) *BotHandlers {
	return &BotHandlers{users: users, applications: applications, tracking: tracking, log: log}
}

// Register wires the command and callback handlers into the bot.
func (h *BotHandlers) Register(ctx context.Context, b *telebot.Bot) {
	b.Handle("/start", func(c telebot.Context) error {
		h.log.WithFields(logrus.Fields{"command": "/start", "chat_id": c.Chat().ID}).Info("Processing /start command")
		return c.Send(h.startReply(ctx, c.Chat().ID, c.Sender().FirstName))
	})

	b.Handle("/status", func(c telebot.Context) error {
		h.log.WithFields(logrus.Fields{"command": "/status", "chat_id": c.Chat().ID}).Info("Processing /status command")
		return c.Send(h.statusReply(ctx, c.Chat().ID))
	})

	b.Handle("/help", func(c telebot.Context) error {
		return c.Send(helpText, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		text, err := h.offerCallbackReply(ctx, c.Chat().ID, c.Callback().Data)
		if err != nil {
			c.Bot().OnError(err, c)
		}
		return c.Respond(&telebot.CallbackResponse{Text: text})
	})
}

const helpText = "Available commands:\n\n" +
	"`/start`\n - Show the ID of this chat. Link it to your account to receive notifications.\n\n" +
	"`/status`\n - List your applications and their progress.\n\n" +
	"`/help`\n - Show this message."

func (h *BotHandlers) startReply(ctx context.Context, chatID int64, firstName string) string {
	_, u, err := h.users.ResolveTelegramActor(ctx, chatID)
	switch {
	case err == nil:
		return fmt.Sprintf("Hello, %s! This chat is linked to your %s account. Use /status to see your applications.", u.Name, strings.ToLower(string(u.Role)))
	case common.Is(err, common.CodeNotFound):
		return fmt.Sprintf("Hello, %s! This chat is not linked yet. Link it from your account with chat ID %d.", firstName, chatID)
	default:
		h.log.WithError(err).WithField("chat_id", chatID).Error("Error resolving chat for /start command")
		return "Something went wrong while checking your account. Please try again later."
	}
}

func (h *BotHandlers) statusReply(ctx context.Context, chatID int64) string {
	actor, _, err := h.users.ResolveTelegramActor(ctx, chatID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return "This chat is not linked to an account. Send /start for instructions."
		}
		h.log.WithError(err).WithField("chat_id", chatID).Error("Error resolving chat for /status command")
		return "Something went wrong while checking your account. Please try again later."
	}

	progress, err := h.tracking.Realtime(ctx, actor)
	if err != nil {
		h.log.WithError(err).WithField("user_id", actor.ID).Error("Error loading applications for /status command")
		return "Could not load your applications. Please try again later."
	}
	if len(progress) == 0 {
		return "No applications yet."
	}

	var b strings.Builder
	b.WriteString("Applications:\n")
	for _, p := range progress {
		fmt.Fprintf(&b, "\n#%d internship #%d: %s (%d/%d steps)",
			p.Application.ID, p.Application.InternshipID, p.Application.Status, p.CompletedSteps, p.TotalSteps)
	}
	return b.String()
}

// offerCallbackReply handles the accept and decline buttons sent with offers.
// Accepting moves the application to OFFER_ACCEPTED; declining only rejects
// the offer record.
func (h *BotHandlers) offerCallbackReply(ctx context.Context, chatID int64, data string) (string, error) {
	action, offerID, err := dtelegram.ParseOfferCallback(data)
	if err != nil {
		return "Unknown action.", err
	}
	logCtx := h.log.WithFields(logrus.Fields{"chat_id": chatID, "offer_id": offerID, "action": action})

	actor, _, err := h.users.ResolveTelegramActor(ctx, chatID)
	if err != nil {
		return "This chat is not linked to an account.", fmt.Errorf("offer callback from unlinked chat %d: %w", chatID, err)
	}

	switch action {
	case dtelegram.OfferActionAccept:
		o, err := h.tracking.GetOffer(ctx, actor, offerID)
		if err != nil {
			return common.PublicMessage(err), err
		}
		if _, err := h.applications.Transition(ctx, actor, o.ApplicationID, application.StatusOfferAccepted); err != nil {
			logCtx.WithError(err).Info("Offer acceptance refused")
			return common.PublicMessage(err), err
		}
		logCtx.Info("Offer accepted from Telegram")
		return "Offer accepted!", nil
	default:
		_, err := h.tracking.UpdateOfferStatus(ctx, actor, app.UpdateOfferStatusInput{OfferID: offerID, Status: offer.StatusRejected})
		if err != nil {
			logCtx.WithError(err).Info("Offer decline refused")
			return common.PublicMessage(err), err
		}
		logCtx.Info("Offer declined from Telegram")
		return "Offer declined.", nil
	}
}
