// Package notify delivers pickup notifications to the owner's chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"parcel-code-relay-go/internal/config"
)

// Notifier sends a plain-text notification to one messaging channel.
// Implementations report success or failure and nothing else; the
// caller decides what a failure means.
type Notifier interface {
	Send(ctx context.Context, chatID, text string) error
}

// TelegramNotifier implements Notifier over the Telegram Bot API
type TelegramNotifier struct {
	client  *http.Client
	apiBase string
	token   string
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(cfg *config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		client:  &http.Client{Timeout: cfg.Timeout},
		apiBase: strings.TrimRight(cfg.APIBase, "/"),
		token:   cfg.BotToken,
	}
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts one sendMessage call to the Bot API
func (n *TelegramNotifier) Send(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call telegram API: %w", err)
	}
	defer resp.Body.Close()

	var result telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}

	if !result.OK {
		return fmt.Errorf("telegram API rejected message for chat %s: %s", chatID, result.Description)
	}

	logrus.Debugf("Delivered notification to chat %s", chatID)
	return nil
}

// TestConnection verifies the bot token against the getMe endpoint
func (n *TelegramNotifier) TestConnection(ctx context.Context) error {
	url := fmt.Sprintf("%s/bot%s/getMe", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call telegram API: %w", err)
	}
	defer resp.Body.Close()

	var result telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram bot token rejected: %s", result.Description)
	}
	return nil
}

// PickupMessage formats the notification text for a stored pickup code.
// It always carries the tracking number and code; the location line is
// added when known.
func PickupMessage(trackingNumber, code, location string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Your InPost parcel %s is ready for collection.\n", trackingNumber))
	b.WriteString(fmt.Sprintf("Collection code: %s\n", code))
	if location != "" {
		b.WriteString(fmt.Sprintf("Location: %s\n", location))
	}
	b.WriteString("Remember: the code expires 48 hours after the parcel reaches the locker.")

	return b.String()
}
