package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "7000000001:AAtest-bot-token-for-unit-tests"

// signInitData builds a payload the way the host platform does: sorted
// key=value pairs joined by newlines, HMAC-SHA256 under SHA-256(bot token).
func signInitData(t *testing.T, botToken string, params map[string]string) string {
	t.Helper()

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func validParams() map[string]string {
	return map[string]string{
		"auth_date": "1756500000",
		"query_id":  "AAE5mXgRAAAAADmZeBHreXsf",
		"user":      `{"id":123456789,"first_name":"Olga","last_name":"M","username":"olga_m"}`,
	}
}

func TestVerifyValidPayload(t *testing.T) {
	v := NewVerifier(testBotToken)

	user, err := v.Verify(signInitData(t, testBotToken, validParams()))
	require.NoError(t, err)

	assert.Equal(t, int64(123456789), user.ID)
	assert.Equal(t, "Olga", user.FirstName)
	assert.Equal(t, "Olga M", user.DisplayName())
}

func TestVerifyParameterOrderDoesNotMatter(t *testing.T) {
	v := NewVerifier(testBotToken)
	initData := signInitData(t, testBotToken, validParams())

	// Reassemble the same pairs in reverse order.
	parts := strings.Split(initData, "&")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	shuffled := strings.Join(parts, "&")

	user, err := v.Verify(shuffled)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), user.ID)
}

func TestVerifyTamperedHash(t *testing.T) {
	v := NewVerifier(testBotToken)
	initData := signInitData(t, testBotToken, validParams())

	values, err := url.ParseQuery(initData)
	require.NoError(t, err)
	hash := values.Get("hash")

	// Flip one hex character of the hash.
	flipped := "0"
	if hash[0] == '0' {
		flipped = "1"
	}
	values.Set("hash", flipped+hash[1:])

	_, err = v.Verify(values.Encode())
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyTamperedValue(t *testing.T) {
	v := NewVerifier(testBotToken)

	params := validParams()
	initData := signInitData(t, testBotToken, params)

	values, err := url.ParseQuery(initData)
	require.NoError(t, err)
	values.Set("user", `{"id":987654321,"first_name":"Mallory"}`)

	_, err = v.Verify(values.Encode())
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyWrongBotToken(t *testing.T) {
	v := NewVerifier("other-token")

	_, err := v.Verify(signInitData(t, testBotToken, validParams()))
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyMissingHash(t *testing.T) {
	v := NewVerifier(testBotToken)

	values := url.Values{}
	for k, val := range validParams() {
		values.Set(k, val)
	}

	_, err := v.Verify(values.Encode())
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyEmptyInput(t *testing.T) {
	v := NewVerifier(testBotToken)

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyMalformedUserField(t *testing.T) {
	v := NewVerifier(testBotToken)

	params := validParams()
	params["user"] = "not-json"
	initData := signInitData(t, testBotToken, params)

	// Correctly signed, but the user field is not a JSON object.
	_, err := v.Verify(initData)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyMissingUserField(t *testing.T) {
	v := NewVerifier(testBotToken)

	params := validParams()
	delete(params, "user")

	_, err := v.Verify(signInitData(t, testBotToken, params))
	assert.ErrorIs(t, err, ErrInvalidInitData)
}
