package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskstudy/internal/types"
)

func TestNewBrevoClient_ParsesSender(t *testing.T) {
	t.Run("name and address form", func(t *testing.T) {
		client, err := NewBrevoClient(DefaultHTTPClient(), "key", "TaskStudy <notifications@taskstudy.app>")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.sender.Name != "TaskStudy" || client.sender.Email != "notifications@taskstudy.app" {
			t.Errorf("sender = %+v", client.sender)
		}
	})

	t.Run("quoted name form", func(t *testing.T) {
		client, err := NewBrevoClient(DefaultHTTPClient(), "key", `"TaskStudy Notifications" <notifications@taskstudy.app>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.sender.Name != "TaskStudy Notifications" || client.sender.Email != "notifications@taskstudy.app" {
			t.Errorf("sender = %+v", client.sender)
		}
	})

	t.Run("bare address gets the default name", func(t *testing.T) {
		client, err := NewBrevoClient(DefaultHTTPClient(), "key", "notifications@taskstudy.app")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.sender.Name != "TaskStudy" || client.sender.Email != "notifications@taskstudy.app" {
			t.Errorf("sender = %+v", client.sender)
		}
	})

	t.Run("bare name gets the default address", func(t *testing.T) {
		client, err := NewBrevoClient(DefaultHTTPClient(), "key", "Study Desk")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.sender.Name != "Study Desk" || client.sender.Email != "noreply@taskstudy.com" {
			t.Errorf("sender = %+v", client.sender)
		}
	})

	t.Run("empty address is a config error", func(t *testing.T) {
		_, err := NewBrevoClient(DefaultHTTPClient(), "key", "")
		var appErr *types.AppError
		if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeChannelNotConfigured {
			t.Errorf("err = %v", err)
		}
	})
}

func TestBrevoClient_Send_Success(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody brevoSendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"messageId":"msg_1"}`))
	}))
	defer server.Close()

	client, err := NewBrevoClient(DefaultHTTPClient(), "api-key-1", "TaskStudy <notifications@taskstudy.app>")
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	client.WithBaseURL(server.URL)

	err = client.Send(context.Background(), "ana@example.com", "Your daily digest", "<p>hi</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/smtp/email" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAPIKey != "api-key-1" {
		t.Errorf("api-key header = %q", gotAPIKey)
	}
	if len(gotBody.To) != 1 || gotBody.To[0].Email != "ana@example.com" {
		t.Errorf("to = %+v", gotBody.To)
	}
	if gotBody.Subject != "Your daily digest" || gotBody.HTMLContent != "<p>hi</p>" {
		t.Errorf("body = %+v", gotBody)
	}
	if gotBody.Sender.Email != "notifications@taskstudy.app" {
		t.Errorf("sender = %+v", gotBody.Sender)
	}
}

func TestBrevoClient_Send_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"invalid_parameter","message":"bad recipient"}`))
	}))
	defer server.Close()

	client, err := NewBrevoClient(DefaultHTTPClient(), "key", "notifications@taskstudy.app")
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	client.WithBaseURL(server.URL)

	err = client.Send(context.Background(), "broken", "s", "<p></p>")
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != types.ErrCodeUpstreamEmail {
		t.Errorf("code = %s", appErr.Code)
	}
}
