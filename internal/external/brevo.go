package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"

	"taskstudy/internal/types"
)

// brevoDefaultBaseURL is the production Brevo API endpoint.
const brevoDefaultBaseURL = "https://api.brevo.com/v3"

// BrevoClient sends transactional email through the Brevo (formerly
// Sendinblue) SMTP API.
type BrevoClient struct {
	base    *BaseClient
	baseURL string
	apiKey  string
	sender  brevoParty
}

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoSendRequest struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

// NewBrevoClient creates a Brevo email client. The from address accepts
// either a bare address or the "Name <address>" form.
func NewBrevoClient(httpClient *http.Client, apiKey, from string) (*BrevoClient, error) {
	sender, err := parseSender(from)
	if err != nil {
		return nil, err
	}
	return &BrevoClient{
		base:    NewBaseClient(httpClient, "brevo", DefaultRetryPolicy(), "taskstudy/1.0"),
		baseURL: brevoDefaultBaseURL,
		apiKey:  apiKey,
		sender:  sender,
	}, nil
}

// WithBaseURL points the client at a different endpoint, e.g. a test server.
func (c *BrevoClient) WithBaseURL(baseURL string) *BrevoClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Send delivers one HTML email. Returns an AppError with an upstream code
// on provider failure.
func (c *BrevoClient) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(brevoSendRequest{
		Sender:      c.sender,
		To:          []brevoParty{{Email: to}},
		Subject:     subject,
		HTMLContent: html,
	})
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode email payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/smtp/email", bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build email request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.base.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamEmail, "email provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return types.NewAppError(
			types.ErrCodeUpstreamEmail,
			fmt.Sprintf("email provider rejected send with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			nil,
		)
	}
	return nil
}

// Defaults applied when the configured sender omits a part.
const (
	defaultSenderName  = "TaskStudy"
	defaultSenderEmail = "noreply@taskstudy.com"
)

// parseSender resolves the configured from address into a Brevo sender.
// Accepts "Name <address>" (quotes stripped), a bare address (default
// display name), or a bare display name (default address).
func parseSender(from string) (brevoParty, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return brevoParty{}, types.NewAppError(
			types.ErrCodeChannelNotConfigured, "email sender address is not configured", nil)
	}

	if addr, err := mail.ParseAddress(from); err == nil {
		name := addr.Name
		if name == "" {
			name = defaultSenderName
		}
		return brevoParty{Name: name, Email: addr.Address}, nil
	}

	// Not parseable as an address: treat it as a display name.
	name := strings.TrimSpace(strings.Trim(from, `"'`))
	if name == "" {
		name = defaultSenderName
	}
	return brevoParty{Name: name, Email: defaultSenderEmail}, nil
}
