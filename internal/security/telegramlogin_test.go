package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

const testBotToken = "12345:TEST-TOKEN"

// signLoginParams computes the widget signature the way Telegram does
func signLoginParams(botToken string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+params[key])
	}

	secretKey := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

func newLoginParams(authDate time.Time) map[string]string {
	params := map[string]string{
		"id":         "123456789",
		"first_name": "Ada",
		"username":   "ada",
		"auth_date":  strconv.FormatInt(authDate.Unix(), 10),
	}
	params["hash"] = signLoginParams(testBotToken, params)
	return params
}

func TestLoginVerifierAcceptsValidAssertion(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	verifier := NewLoginVerifier(testBotToken)
	verifier.now = func() time.Time { return now }

	claims, ok := verifier.Verify(newLoginParams(now.Add(-time.Minute)))
	if !ok {
		t.Fatal("valid assertion rejected")
	}
	if claims["id"] != "123456789" {
		t.Errorf("id claim = %q, want 123456789", claims["id"])
	}
	if _, present := claims["hash"]; present {
		t.Error("hash field leaked into returned claims")
	}
}

func TestLoginVerifierFreshness(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	verifier := NewLoginVerifier(testBotToken)
	verifier.now = func() time.Time { return now }

	tests := []struct {
		name     string
		authDate time.Time
		want     bool
	}{
		{"just inside the window", now.Add(-599 * time.Second), true},
		{"just outside the window", now.Add(-601 * time.Second), false},
		{"future skew inside the window", now.Add(599 * time.Second), true},
		{"future skew outside the window", now.Add(601 * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := verifier.Verify(newLoginParams(tt.authDate)); ok != tt.want {
				t.Errorf("Verify() = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestLoginVerifierRejectsTamperedPayload(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	verifier := NewLoginVerifier(testBotToken)
	verifier.now = func() time.Time { return now }

	params := newLoginParams(now)
	params["id"] = "987654321"
	if _, ok := verifier.Verify(params); ok {
		t.Error("assertion with altered id was accepted")
	}
}

func TestLoginVerifierRejectsBadHash(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	verifier := NewLoginVerifier(testBotToken)
	verifier.now = func() time.Time { return now }

	params := newLoginParams(now)
	params["hash"] = strings.Repeat("ab", 32)
	if _, ok := verifier.Verify(params); ok {
		t.Error("assertion with a forged hash was accepted")
	}

	delete(params, "hash")
	if _, ok := verifier.Verify(params); ok {
		t.Error("assertion without a hash was accepted")
	}
}

func TestLoginVerifierRejectsWrongBotToken(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	verifier := NewLoginVerifier("99999:OTHER-TOKEN")
	verifier.now = func() time.Time { return now }

	if _, ok := verifier.Verify(newLoginParams(now)); ok {
		t.Error("assertion signed for a different bot was accepted")
	}
}
