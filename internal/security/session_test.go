package security

import (
	"strings"
	"testing"
	"time"
)

func TestSessionRoundTrip(t *testing.T) {
	signer := NewSessionSigner("test-secret", 14*24*time.Hour)

	token, err := signer.Issue(123456789)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, ok := signer.Verify(token)
	if !ok {
		t.Fatal("Verify() rejected a freshly issued token")
	}
	if claims.TelegramID != 123456789 {
		t.Errorf("TelegramID = %d, want 123456789", claims.TelegramID)
	}
	if claims.ExpiresAt-claims.IssuedAt != int64((14 * 24 * time.Hour).Seconds()) {
		t.Errorf("token lifetime = %d seconds, want 14 days", claims.ExpiresAt-claims.IssuedAt)
	}
}

func TestSessionExpiry(t *testing.T) {
	signer := NewSessionSigner("test-secret", time.Hour)
	issued := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	signer.now = func() time.Time { return issued }
	token, err := signer.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	signer.now = func() time.Time { return issued.Add(30 * time.Minute) }
	if _, ok := signer.Verify(token); !ok {
		t.Error("token rejected before expiry")
	}

	signer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, ok := signer.Verify(token); ok {
		t.Error("token accepted after expiry")
	}
}

func TestSessionTamperDetection(t *testing.T) {
	signer := NewSessionSigner("test-secret", time.Hour)
	token, err := signer.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"no separator", strings.ReplaceAll(token, ".", "")},
		{"flipped payload byte", "A" + token[1:]},
		{"truncated signature", token[:len(token)-2]},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := signer.Verify(tt.token); ok {
				t.Errorf("Verify(%q) accepted a tampered token", tt.token)
			}
		})
	}
}

func TestSessionWrongSecretRejected(t *testing.T) {
	token, err := NewSessionSigner("secret-a", time.Hour).Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, ok := NewSessionSigner("secret-b", time.Hour).Verify(token); ok {
		t.Error("token signed under a different secret was accepted")
	}
}

func TestIssueWithoutSecretFails(t *testing.T) {
	signer := NewSessionSigner("", time.Hour)
	if _, err := signer.Issue(42); err != ErrMissingSecret {
		t.Errorf("Issue() error = %v, want ErrMissingSecret", err)
	}
}
