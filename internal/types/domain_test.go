package types

import "testing"

func TestUser_RecipientEmail(t *testing.T) {
	u := User{Email: "ana@example.com"}
	if got := u.RecipientEmail(); got != "ana@example.com" {
		t.Errorf("got %q", got)
	}

	u.NotificationEmail = "alerts@example.com"
	if got := u.RecipientEmail(); got != "alerts@example.com" {
		t.Errorf("got %q, want the notification override", got)
	}

	u.NotificationEmail = "   "
	if got := u.RecipientEmail(); got != "ana@example.com" {
		t.Errorf("got %q, blank override must fall back", got)
	}
}

func TestUser_FirstName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Ana Souza", "Ana"},
		{"Ana", "Ana"},
		{"  Ana Clara Souza ", "Ana"},
		{"", ""},
	}
	for _, tc := range cases {
		u := User{Name: tc.name}
		if got := u.FirstName(); got != tc.want {
			t.Errorf("FirstName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUser_ChannelGating(t *testing.T) {
	u := User{
		ConsentGiven:     true,
		NotifyByTelegram: true,
		NotifyByWhatsApp: true,
		TelegramChatID:   "chat_1",
		Phone:            "+5511999990000",
	}
	if !u.TelegramEnabled() || !u.WhatsAppEnabled() {
		t.Fatal("fully opted-in user must have both channels enabled")
	}

	noConsent := u
	noConsent.ConsentGiven = false
	if noConsent.TelegramEnabled() || noConsent.WhatsAppEnabled() {
		t.Error("consent gates every optional channel")
	}

	noChat := u
	noChat.TelegramChatID = " "
	if noChat.TelegramEnabled() {
		t.Error("telegram needs a linked chat ID")
	}

	noPhone := u
	noPhone.Phone = ""
	if noPhone.WhatsAppEnabled() {
		t.Error("whatsapp needs a phone number")
	}
}

func TestPriority_ScoreAndLabel(t *testing.T) {
	cases := []struct {
		priority Priority
		score    int
		label    string
	}{
		{PriorityHigh, 3, "High"},
		{PriorityMedium, 2, "Medium"},
		{PriorityLow, 1, "Low"},
		{Priority("unset"), 0, "unset"},
	}
	for _, tc := range cases {
		if got := tc.priority.Score(); got != tc.score {
			t.Errorf("%s score = %d, want %d", tc.priority, got, tc.score)
		}
		if got := tc.priority.Label(); got != tc.label {
			t.Errorf("%s label = %q, want %q", tc.priority, got, tc.label)
		}
	}
}
