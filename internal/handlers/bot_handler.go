package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/client"
	"github.com/twilio/twilio-go/twiml"
)

const replyThrottled = "You're sending messages too quickly. Please wait a minute and try again."

// Replier produces the bot's answer to one inbound message.
type Replier interface {
	Reply(ctx context.Context, from, body string) string
}

// Deduper reports whether a webhook delivery was already answered.
type Deduper interface {
	Seen(ctx context.Context, messageID string) (bool, error)
}

// WebhookAuth configures Twilio request signing. An empty AuthToken turns
// verification off. PublicURL is the webhook address configured at Twilio;
// when empty it is rebuilt from the request.
type WebhookAuth struct {
	AuthToken string
	PublicURL string
}

// BotHandler is the WhatsApp webhook. It always answers 200 with a reply so
// the provider never retries on our faults. Only unsigned or forged
// deliveries are refused.
type BotHandler struct {
	bot       Replier
	deduper   Deduper
	validator *client.RequestValidator
	publicURL string
}

func NewBotHandler(bot Replier, deduper Deduper, auth WebhookAuth) *BotHandler {
	h := &BotHandler{bot: bot, deduper: deduper, publicURL: auth.PublicURL}
	if auth.AuthToken != "" {
		v := client.NewRequestValidator(auth.AuthToken)
		h.validator = &v
	}
	return h
}

// verified reports whether the delivery carries a valid X-Twilio-Signature.
func (h *BotHandler) verified(c *fiber.Ctx) bool {
	if h.validator == nil {
		return true
	}
	signature := c.Get("X-Twilio-Signature")
	if signature == "" {
		return false
	}
	url := h.publicURL
	if url == "" {
		url = c.BaseURL() + c.OriginalURL()
	}
	return h.validator.ValidateBody(url, c.Body(), signature)
}

func (h *BotHandler) WhatsApp(c *fiber.Ctx) error {
	if !h.verified(c) {
		slog.Warn("rejected unsigned bot webhook", "action", "bot.verify", "ip", c.IP())
		return fail(c, fiber.StatusForbidden, "Invalid webhook signature")
	}

	var msg dto.InboundMessage
	if err := c.BodyParser(&msg); err != nil {
		slog.Warn("unreadable bot webhook", "error", err.Error())
	}

	if msg.MessageSid != "" && h.deduper != nil {
		seen, err := h.deduper.Seen(c.UserContext(), msg.MessageSid)
		if err != nil {
			slog.Warn("bot dedupe unavailable", "action", "bot.dedupe", "error", err.Error())
		}
		if seen {
			slog.Info("duplicate bot delivery ignored", "action", "bot.dedupe", "message_sid", msg.MessageSid)
			return h.respond(c, "")
		}
	}

	reply := h.bot.Reply(c.UserContext(), msg.From, msg.Body)
	return h.respond(c, reply)
}

// Throttled answers a sender who exceeded the per-sender rate limit.
func (h *BotHandler) Throttled(c *fiber.Ctx) error {
	slog.Warn("bot sender throttled", "action", "bot.throttle", "from", c.FormValue("From"))
	return h.respond(c, replyThrottled)
}

func (h *BotHandler) respond(c *fiber.Ctx, reply string) error {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
		return c.JSON(dto.BotReply{Reply: reply})
	}

	var elements []twiml.Element
	if reply != "" {
		elements = append(elements, &twiml.MessagingMessage{Body: reply})
	}
	doc, err := twiml.Messages(elements)
	if err != nil {
		slog.Error("twiml render failed", "action", "bot.reply", "error", err.Error())
		doc = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.SendString(doc)
}
