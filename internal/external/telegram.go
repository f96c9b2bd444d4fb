package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"taskstudy/internal/types"
)

// telegramDefaultBaseURL is the production Telegram Bot API endpoint.
const telegramDefaultBaseURL = "https://api.telegram.org"

// TelegramClient sends messages through the Telegram Bot API.
type TelegramClient struct {
	base     *BaseClient
	baseURL  string
	botToken string

	// defaultChatID receives messages when the caller passes an empty chat
	// ID, typically for operator test sends.
	defaultChatID string
}

type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// NewTelegramClient creates a Telegram bot client.
func NewTelegramClient(httpClient *http.Client, botToken, defaultChatID string) *TelegramClient {
	return &TelegramClient{
		base:          NewBaseClient(httpClient, "telegram", DefaultRetryPolicy(), "taskstudy/1.0"),
		baseURL:       telegramDefaultBaseURL,
		botToken:      botToken,
		defaultChatID: defaultChatID,
	}
}

// WithBaseURL points the client at a different endpoint, e.g. a test server.
func (c *TelegramClient) WithBaseURL(baseURL string) *TelegramClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Send delivers one message to a chat. An empty chatID falls back to the
// configured default chat when one exists.
func (c *TelegramClient) Send(ctx context.Context, chatID, text string) error {
	if c.botToken == "" {
		return types.NewAppError(types.ErrCodeChannelNotConfigured, "telegram bot token is not configured", nil)
	}
	if chatID == "" {
		chatID = c.defaultChatID
	}
	if chatID == "" {
		return types.NewAppError(types.ErrCodeChannelNotConfigured, "no telegram chat id available", nil)
	}

	payload, err := json.Marshal(telegramSendRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode telegram payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken), bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build telegram request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamTelegram, "telegram request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed telegramResponse
	if err := json.Unmarshal(body, &parsed); err != nil || !parsed.OK {
		desc := parsed.Description
		if desc == "" {
			desc = strings.TrimSpace(string(body))
		}
		return types.NewAppError(
			types.ErrCodeUpstreamTelegram,
			fmt.Sprintf("telegram rejected send with status %d: %s", resp.StatusCode, desc),
			nil,
		)
	}
	return nil
}
