// Package qrtoken builds and verifies the signed QR attendance payload.
// The wire schema is stable: printed QR codes may outlive a deploy.
package qrtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrMalformed         = errors.New("malformed qr token")
	ErrExpired           = errors.New("qr token expired")
	ErrSignatureMismatch = errors.New("qr token signature mismatch")
)

// Token is the serialized QR payload. Hash is a hex HMAC-SHA256 over the
// identifying fields and the issue timestamp; the payload is signed, not
// encrypted.
type Token struct {
	RegistrationID   string `json:"registrationId"`
	EventID          string `json:"eventId"`
	ParticipantEmail string `json:"participantEmail"`
	Timestamp        string `json:"timestamp"`  // RFC3339, issue time
	ExpiryTime       string `json:"expiryTime"` // RFC3339
	Hash             string `json:"hash"`
}

// Encode serializes the token to its QR wire form.
func (t Token) Encode() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a raw QR payload. Returns ErrMalformed for anything that is
// not a well-formed token document.
func Decode(raw string) (Token, error) {
	var t Token
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Token{}, ErrMalformed
	}
	return t, nil
}

// Codec mints and verifies tokens. It holds no state beyond the signing
// secret and validity window; both operations are pure given a clock.
type Codec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewCodec creates a codec with the given signing secret and validity window.
func NewCodec(secret string, validity time.Duration) *Codec {
	return &Codec{
		secret:   []byte(secret),
		validity: validity,
		now:      time.Now,
	}
}

// Mint creates a signed token bound to a registration, event and participant.
func (c *Codec) Mint(registrationID, eventID, participantEmail string) Token {
	issuedAt := c.now().UTC()
	ts := issuedAt.Format(time.RFC3339)
	return Token{
		RegistrationID:   registrationID,
		EventID:          eventID,
		ParticipantEmail: participantEmail,
		Timestamp:        ts,
		ExpiryTime:       issuedAt.Add(c.validity).Format(time.RFC3339),
		Hash:             c.sign(registrationID, eventID, participantEmail, ts),
	}
}

// Verify checks a token for completeness, freshness and signature integrity.
// Returns nil for a valid token, otherwise ErrMalformed, ErrExpired or
// ErrSignatureMismatch.
func (c *Codec) Verify(t Token) error {
	if t.RegistrationID == "" || t.EventID == "" || t.ParticipantEmail == "" ||
		t.Timestamp == "" || t.ExpiryTime == "" || t.Hash == "" {
		return ErrMalformed
	}
	expiry, err := time.Parse(time.RFC3339, t.ExpiryTime)
	if err != nil {
		return ErrMalformed
	}
	if c.now().After(expiry) {
		return ErrExpired
	}
	want := c.sign(t.RegistrationID, t.EventID, t.ParticipantEmail, t.Timestamp)
	if !hmac.Equal([]byte(want), []byte(t.Hash)) {
		return ErrSignatureMismatch
	}
	return nil
}

func (c *Codec) sign(registrationID, eventID, email, timestamp string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(strings.Join([]string{registrationID, eventID, email, timestamp}, ":")))
	return hex.EncodeToString(mac.Sum(nil))
}
