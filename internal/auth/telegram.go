// Package auth verifies the signed session payload (initData) that the
// Telegram mini-app client passes with every request. Verification is a pure
// function of the payload and the bot token; there is no session store and
// no network round-trip.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidInitData is returned for any payload that fails verification.
// The caller must not reveal which check failed.
var ErrInvalidInitData = errors.New("invalid init data")

// User is the authenticated identity embedded in a verified payload.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns the user's human-readable name.
func (u *User) DisplayName() string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

// Verifier validates initData payloads against a secret derived from the bot
// token. Construct once at startup and share; it is immutable and safe for
// concurrent use.
type Verifier struct {
	secret []byte
}

// NewVerifier derives the HMAC key as SHA-256 of the bot token.
func NewVerifier(botToken string) *Verifier {
	sum := sha256.Sum256([]byte(botToken))
	return &Verifier{secret: sum[:]}
}

// Verify checks the integrity hash of an initData payload and returns the
// embedded user. Any failure (empty input, missing hash, signature mismatch,
// malformed user field) yields ErrInvalidInitData.
//
// The check-string is every key=value pair except "hash", sorted by key and
// joined with newlines; its HMAC-SHA256 under the derived secret must equal
// the payload's hash, compared in constant time.
func (v *Verifier) Verify(initData string) (*User, error) {
	if initData == "" {
		return nil, ErrInvalidInitData
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(checkString))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(wantHash), []byte(gotHash)) {
		return nil, ErrInvalidInitData
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrInvalidInitData
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInitData, err)
	}
	if user.ID == 0 {
		return nil, ErrInvalidInitData
	}

	return &user, nil
}
