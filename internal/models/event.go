package models

import (
	"encoding/json"
	"strings"
)

// WebhookEvent is the gateway delivery envelope.
type WebhookEvent struct {
	Event   string          `json:"event"`
	Session string          `json:"session"`
	Payload *WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	Body      string        `json:"body"`
	Timestamp json.Number   `json:"timestamp"`
	FromMe    bool          `json:"fromMe"`
	HasMedia  bool          `json:"hasMedia"`
	MediaURL  string        `json:"mediaUrl"`
	Media     *WebhookMedia `json:"media"`
	MimeType  string        `json:"mimetype"`
	Filename  string        `json:"filename"`
}

type WebhookMedia struct {
	URL      string `json:"url"`
	MimeType string `json:"mimetype"`
	Filename string `json:"filename"`
}

// Attachment describes the media carried by an inbound message.
type Attachment struct {
	URL      string
	MimeType string
	Filename string
}

// InboundEvent is one webhook delivery, normalised. It is never mutated after construction.
type InboundEvent struct {
	ChatID     string
	MessageID  string
	Timestamp  string
	Body       string
	Attachment *Attachment
	FromMe     bool
	IsGroup    bool
}

// Fingerprint identifies a single delivery for duplicate suppression.
type Fingerprint struct {
	ChatID    string
	MessageID string
	Timestamp string
}

func (e InboundEvent) Fingerprint() Fingerprint {
	return Fingerprint{ChatID: e.ChatID, MessageID: e.MessageID, Timestamp: e.Timestamp}
}

// Phone strips the WhatsApp suffix from the chat id ("51987654321@c.us" -> "51987654321").
func (e InboundEvent) Phone() string {
	phone, _, _ := strings.Cut(e.ChatID, "@")
	return phone
}

// ToInboundEvent validates the payload and builds the event. A missing payload or sender
// yields ErrMalformedInbound.
func (w *WebhookEvent) ToInboundEvent() (InboundEvent, error) {
	if w == nil || w.Payload == nil {
		return InboundEvent{}, ErrMalformedInbound
	}
	p := w.Payload
	chatID := strings.TrimSpace(p.From)
	if chatID == "" {
		return InboundEvent{}, ErrMalformedInbound
	}

	ev := InboundEvent{
		ChatID:    chatID,
		MessageID: p.ID,
		Timestamp: p.Timestamp.String(),
		Body:      p.Body,
		FromMe:    p.FromMe,
		IsGroup:   strings.Contains(chatID, "@g.us"),
	}

	mediaURL := p.MediaURL
	if mediaURL == "" && p.Media != nil {
		mediaURL = p.Media.URL
	}
	if p.HasMedia && mediaURL != "" {
		att := &Attachment{URL: mediaURL, MimeType: p.MimeType, Filename: p.Filename}
		if p.Media != nil {
			if p.Media.MimeType != "" {
				att.MimeType = p.Media.MimeType
			}
			if p.Media.Filename != "" {
				att.Filename = p.Media.Filename
			}
		}
		// Documents sent without a filename carry it in the caption.
		if att.Filename == "" {
			att.Filename = p.Body
		}
		ev.Attachment = att
	}

	return ev, nil
}
