package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
)

// WhatsAppGateway is the outbound side of the WAHA chat gateway.
type WhatsAppGateway interface {
	SendText(ctx context.Context, chatID, text string) error
	StartTyping(ctx context.Context, chatID string) error
	StopTyping(ctx context.Context, chatID string) error
	GetHistory(ctx context.Context, chatID string, limit int) ([]models.ChatMessage, error)
	SessionStatus(ctx context.Context) (*SessionStatus, error)
}

type SessionStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Connected reports whether the WhatsApp session can send and receive.
func (s *SessionStatus) Connected() bool {
	return s != nil && (s.Status == "WORKING" || s.Status == "CONNECTED")
}

type wahaClient struct {
	baseURL string
	session string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewWahaClient builds a gateway client. Sends are paced to one per sendInterval; a
// non-positive interval disables pacing.
func NewWahaClient(baseURL, session, apiKey string, timeout, sendInterval time.Duration, log *zap.Logger) WhatsAppGateway {
	limit := rate.Inf
	if sendInterval > 0 {
		limit = rate.Every(sendInterval)
	}
	return &wahaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		apiKey:  apiKey,
		timeout: timeout,
		http:    &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
		log:     logger.OrNop(log).Named("waha"),
	}
}

type chatRequest struct {
	Session string `json:"session"`
	ChatID  string `json:"chatId"`
	Text    string `json:"text,omitempty"`
}

// SendText implements WhatsAppGateway.
func (c *wahaClient) SendText(ctx context.Context, chatID, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("send to %s: %w", chatID, err)
	}
	if err := c.post(ctx, "/api/sendText", chatRequest{Session: c.session, ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("send to %s: %w", chatID, err)
	}
	c.log.Info("message sent", zap.String("chat_id", chatID), zap.Int("length", len(text)))
	return nil
}

// StartTyping implements WhatsAppGateway.
func (c *wahaClient) StartTyping(ctx context.Context, chatID string) error {
	if err := c.post(ctx, "/api/startTyping", chatRequest{Session: c.session, ChatID: chatID}); err != nil {
		return fmt.Errorf("start typing in %s: %w", chatID, err)
	}
	return nil
}

// StopTyping implements WhatsAppGateway.
func (c *wahaClient) StopTyping(ctx context.Context, chatID string) error {
	if err := c.post(ctx, "/api/stopTyping", chatRequest{Session: c.session, ChatID: chatID}); err != nil {
		return fmt.Errorf("stop typing in %s: %w", chatID, err)
	}
	return nil
}

// GetHistory implements WhatsAppGateway. Media is never downloaded.
func (c *wahaClient) GetHistory(ctx context.Context, chatID string, limit int) ([]models.ChatMessage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("downloadMedia", "false")
	path := fmt.Sprintf("/api/%s/chats/%s/messages?%s", url.PathEscape(c.session), url.PathEscape(chatID), query.Encode())

	var messages []models.ChatMessage
	if err := c.get(ctx, path, &messages); err != nil {
		return nil, fmt.Errorf("history of %s: %w", chatID, err)
	}
	return messages, nil
}

// SessionStatus implements WhatsAppGateway.
func (c *wahaClient) SessionStatus(ctx context.Context) (*SessionStatus, error) {
	var status SessionStatus
	if err := c.get(ctx, "/api/sessions/"+url.PathEscape(c.session), &status); err != nil {
		return nil, fmt.Errorf("session status: %w", err)
	}
	return &status, nil
}

func (c *wahaClient) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), nil)
}

func (c *wahaClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *wahaClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FormatPhoneNumber turns a phone number into a WhatsApp chat id. Nine-digit numbers are
// assumed to be Peruvian and get the 51 country code. Values that already are chat ids are
// returned unchanged.
func FormatPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.Contains(phone, "@") {
		return phone
	}

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	clean := digits.String()
	if len(clean) == 9 {
		clean = "51" + clean
	}
	return clean + "@c.us"
}
