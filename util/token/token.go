// Package token builds the single-use account activation tokens. A token is
// bound to the account id, a coarse timestamp and the current active flag, so
// activating the account invalidates every token minted before it without any
// server-side bookkeeping.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxAgeDays is how long an activation link stays usable.
const MaxAgeDays = 3

func EncodeUID(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

func DecodeUID(s string) (int64, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(b), 10, 64)
}

// Make mints a token of the form "<days-base36>-<mac>".
func Make(secret string, userID int64, active bool) string {
	days := time.Now().Unix() / 86400
	return format(secret, userID, active, days)
}

// Check verifies tok against the account's current state. A token minted for
// an inactive account stops verifying the moment the account becomes active,
// which makes repeat activation an idempotent failure.
func Check(secret string, userID int64, active bool, tok string) bool {
	i := strings.IndexByte(tok, '-')
	if i <= 0 {
		return false
	}
	days, err := strconv.ParseInt(tok[:i], 36, 64)
	if err != nil {
		return false
	}
	now := time.Now().Unix() / 86400
	if now-days > MaxAgeDays || days > now {
		return false
	}
	want := format(secret, userID, active, days)
	return hmac.Equal([]byte(want), []byte(tok))
}

func format(secret string, userID int64, active bool, days int64) string {
	daysStr := strconv.FormatInt(days, 36)
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d:%s:%t", userID, daysStr, active)
	sig := hex.EncodeToString(mac.Sum(nil))[:32]
	return daysStr + "-" + sig
}
