package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken is returned for malformed or tampered download tokens.
	ErrInvalidToken = errors.New("storage: invalid download token")
	// ErrExpiredToken is returned once a download token is past its expiry.
	ErrExpiredToken = errors.New("storage: download token expired")
)

// DownloadToken is the decoded content of a signed download token.
type DownloadToken struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// Signer issues HMAC-SHA256 signed download tokens of the form
// jobID.expiry.base64(path).signature.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner builds a signer; ttl defaults to one day.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Sign issues a token for a stored export.
func (s *Signer) Sign(jobID, path string) (string, time.Time, error) {
	if jobID == "" || path == "" {
		return "", time.Time{}, fmt.Errorf("sign download: job id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("sign download: secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(path))
	sig := s.mac(jobID, exp, encoded)
	return strings.Join([]string{jobID, exp, encoded, sig}, "."), expiresAt, nil
}

// Verify decodes a token, checking its signature and expiry.
func (s *Signer) Verify(token string) (DownloadToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 || parts[0] == "" {
		return DownloadToken{}, ErrInvalidToken
	}
	jobID, exp, encoded, sig := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.mac(jobID, exp, encoded)), []byte(sig)) {
		return DownloadToken{}, ErrInvalidToken
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return DownloadToken{}, ErrInvalidToken
	}
	path, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return DownloadToken{}, ErrInvalidToken
	}

	tok := DownloadToken{JobID: jobID, Path: string(path), ExpiresAt: time.Unix(unix, 0)}
	if s.now().After(tok.ExpiresAt) {
		return tok, ErrExpiredToken
	}
	return tok, nil
}

func (s *Signer) mac(jobID, exp, encoded string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(jobID + "|" + exp + "|" + encoded))
	return hex.EncodeToString(m.Sum(nil))
}
