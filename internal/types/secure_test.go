package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSecretString_Redaction(t *testing.T) {
	secret := SecretString("super-secret-token")

	if got := fmt.Sprintf("%v", secret); got != "***REDACTED***" {
		t.Errorf("formatted = %q", got)
	}
	if got := secret.String(); got != "***REDACTED***" {
		t.Errorf("String() = %q", got)
	}
	if got := secret.Unmask(); got != "super-secret-token" {
		t.Errorf("Unmask() = %q", got)
	}

	data, err := json.Marshal(struct {
		Token SecretString `json:"token"`
	}{Token: secret})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "super-secret-token") {
		t.Errorf("secret leaked into JSON: %s", data)
	}
}
