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

// WhatsAppClient relays messages to a self-hosted WhatsApp webhook bridge.
// The channel is best-effort: callers check Available before sending and
// treat send failures as non-fatal.
type WhatsAppClient struct {
	base       *BaseClient
	webhookURL string
	authToken  string
}

type whatsAppSendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// NewWhatsAppClient creates a WhatsApp relay client. An empty webhookURL
// produces a client whose Available reports false.
func NewWhatsAppClient(httpClient *http.Client, webhookURL, authToken string) *WhatsAppClient {
	return &WhatsAppClient{
		base:       NewBaseClient(httpClient, "whatsapp", DefaultRetryPolicy(), "taskstudy/1.0"),
		webhookURL: strings.TrimSpace(webhookURL),
		authToken:  authToken,
	}
}

// Available reports whether the relay is configured at all. The engine
// skips the channel entirely when this is false.
func (c *WhatsAppClient) Available() bool {
	return c.webhookURL != ""
}

// Send relays one message to a phone number through the webhook bridge.
func (c *WhatsAppClient) Send(ctx context.Context, to, message string) error {
	if !c.Available() {
		return types.NewAppError(types.ErrCodeChannelNotConfigured, "whatsapp webhook is not configured", nil)
	}

	payload, err := json.Marshal(whatsAppSendRequest{Phone: to, Message: message})
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode whatsapp payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build whatsapp request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWhatsApp, "whatsapp relay request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return types.NewAppError(
			types.ErrCodeUpstreamWhatsApp,
			fmt.Sprintf("whatsapp relay rejected send with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			nil,
		)
	}
	return nil
}
