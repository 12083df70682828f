package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "momentary_session"

// ErrMissingSecret indicates the server signing secret is not configured.
// Issuing a token without it would be a security regression, so this is
// surfaced as a hard error rather than degraded.
var ErrMissingSecret = errors.New("APP_SESSION_SECRET is not set")

// SessionClaims is the signed payload carried by a session token
type SessionClaims struct {
	TelegramID int64 `json:"telegram_id"`
	IssuedAt   int64 `json:"iat"`
	ExpiresAt  int64 `json:"exp"`
}

// SessionSigner mints and verifies stateless bearer session tokens of the
// form base64url(JSON payload) + "." + base64url(HMAC-SHA256 signature).
// Validity is purely a function of signature and expiry; there is no
// server-side revocation.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionSigner creates a signer. An empty secret is tolerated here and
// rejected at issuance time, so a misconfigured deployment fails on first use.
func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	return &SessionSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a session token for a Telegram id
func (s *SessionSigner) Issue(telegramID int64) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	issuedAt := s.now().Unix()
	payload, err := json.Marshal(SessionClaims{
		TelegramID: telegramID,
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt + int64(s.ttl.Seconds()),
	})
	if err != nil {
		return "", err
	}

	payloadB64 := base64.RawURLEncoding.EncodeToString(payload)
	return payloadB64 + "." + base64.RawURLEncoding.EncodeToString(s.sign(payloadB64)), nil
}

// Verify checks a token's signature and expiry, returning the claims on
// success. All failure modes (malformed, tampered, expired, no secret)
// yield the same (nil, false) to avoid leaking which check failed.
func (s *SessionSigner) Verify(token string) (*SessionClaims, bool) {
	if len(s.secret) == 0 || token == "" {
		return nil, false
	}

	payloadB64, sigB64, found := strings.Cut(token, ".")
	if !found {
		return nil, false
	}

	providedSig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(providedSig, s.sign(payloadB64)) {
		return nil, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, false
	}
	var claims SessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}
	if claims.ExpiresAt < s.now().Unix() {
		return nil, false
	}

	return &claims, true
}

// sign computes the HMAC-SHA256 signature over the encoded payload
func (s *SessionSigner) sign(payloadB64 string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payloadB64))
	return mac.Sum(nil)
}
