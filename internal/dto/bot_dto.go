package dto

// InboundMessage is a messaging-webhook delivery. Twilio posts form fields
// From/Body/MessageSid; JSON clients use lower-case keys.
type InboundMessage struct {
	From       string `json:"from" form:"From"`
	Body       string `json:"body" form:"Body"`
	MessageSid string `json:"message_sid" form:"MessageSid"`
}

type BotReply struct {
	Reply string `json:"reply"`
}
