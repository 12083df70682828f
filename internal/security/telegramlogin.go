package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxLoginAge bounds replay of login assertions: auth_date must be within
// this distance of the current time, in either direction
const maxLoginAge = 10 * time.Minute

// LoginVerifier checks Telegram Login Widget assertions. The widget signs
// the sorted key=value claims with HMAC-SHA256 under SHA256(bot token).
type LoginVerifier struct {
	botToken string
	now      func() time.Time
}

// NewLoginVerifier creates a verifier for a bot token
func NewLoginVerifier(botToken string) *LoginVerifier {
	return &LoginVerifier{
		botToken: botToken,
		now:      time.Now,
	}
}

// Verify validates a login assertion's signature and freshness, returning
// the claims (without the hash field) on success. Every failure mode yields
// (nil, false) with no further detail.
func (v *LoginVerifier) Verify(params map[string]string) (map[string]string, bool) {
	if v.botToken == "" {
		return nil, false
	}

	providedHash := params["hash"]
	if providedHash == "" {
		return nil, false
	}

	claims := make(map[string]string, len(params))
	for key, value := range params {
		if key != "hash" {
			claims[key] = value
		}
	}

	keys := make([]string, 0, len(claims))
	for key := range claims {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+claims[key])
	}
	checkString := strings.Join(lines, "\n")

	secretKey := sha256.Sum256([]byte(v.botToken))
	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(checkString))
	computedHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computedHash), []byte(providedHash)) {
		return nil, false
	}

	authDate, err := strconv.ParseInt(claims["auth_date"], 10, 64)
	if err != nil {
		return nil, false
	}
	age := v.now().Unix() - authDate
	if age < 0 {
		age = -age
	}
	if age > int64(maxLoginAge.Seconds()) {
		return nil, false
	}

	return claims, true
}
