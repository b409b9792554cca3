// Package embedtoken issues and verifies the short-lived credentials that
// let an embedded feedback widget write to one project without a user
// session.
//
// A token is three segments joined by ".": a 64 character hex secret, the
// expiry as Unix milliseconds, and the project id. When the Service holds a
// key the secret segment is an HMAC-SHA256 over the other two segments, so
// a token cannot be re-targeted or extended by its holder. Without a key the
// secret is random and only the expiry is checked.
package embedtoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	SecretBytes = 32
	DefaultTTL  = time.Hour
	Delimiter   = "."
)

var (
	ErrInvalidProjectID = errors.New("project id must be non-empty and must not contain the token delimiter")
	ErrMalformed        = errors.New("malformed embed token")
	ErrExpired          = errors.New("embed token expired")
	ErrBadSignature     = errors.New("embed token signature mismatch")
)

type Token struct {
	Secret    string
	ExpiresAt time.Time
	ProjectID string
}

func (t Token) String() string {
	return t.Secret + Delimiter + strconv.FormatInt(t.ExpiresAt.UnixMilli(), 10) + Delimiter + t.ProjectID
}

type Service struct {
	key  []byte
	ttl  time.Duration
	now  func() time.Time
	rand io.Reader
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRandom(r io.Reader) Option {
	return func(s *Service) { s.rand = r }
}

// NewService returns a token service. A nil or empty key selects the
// unsigned scheme.
func NewService(key []byte, opts ...Option) *Service {
	s := &Service{
		key:  key,
		ttl:  DefaultTTL,
		now:  time.Now,
		rand: rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Signed() bool {
	return len(s.key) > 0
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue mints a token string for projectID.
func (s *Service) Issue(projectID string) (string, error) {
	tok, err := s.IssueToken(projectID)
	if err != nil {
		return "", err
	}
	return tok.String(), nil
}

func (s *Service) IssueToken(projectID string) (Token, error) {
	if projectID == "" || strings.Contains(projectID, Delimiter) {
		return Token{}, ErrInvalidProjectID
	}

	expiresAt := time.UnixMilli(s.now().Add(s.ttl).UnixMilli())

	var secret string
	if s.Signed() {
		secret = s.sign(expiresAt.UnixMilli(), projectID)
	} else {
		b := make([]byte, SecretBytes)
		if _, err := io.ReadFull(s.rand, b); err != nil {
			return Token{}, fmt.Errorf("failed to generate token secret: %w", err)
		}
		secret = hex.EncodeToString(b)
	}

	return Token{Secret: secret, ExpiresAt: expiresAt, ProjectID: projectID}, nil
}

// Parse decodes and validates raw. The signature is checked before the
// expiry, so on ErrExpired the returned token is authenticated.
func (s *Service) Parse(raw string) (Token, error) {
	parts := strings.Split(raw, Delimiter)
	if len(parts) != 3 {
		return Token{}, ErrMalformed
	}
	secret, expiry, projectID := parts[0], parts[1], parts[2]
	if secret == "" || expiry == "" || projectID == "" {
		return Token{}, ErrMalformed
	}

	millis, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return Token{}, ErrMalformed
	}

	if s.Signed() {
		expected := s.sign(millis, projectID)
		if !hmac.Equal([]byte(expected), []byte(secret)) {
			return Token{}, ErrBadSignature
		}
	}

	tok := Token{Secret: secret, ExpiresAt: time.UnixMilli(millis), ProjectID: projectID}

	if !s.now().Before(tok.ExpiresAt) {
		return tok, ErrExpired
	}

	return tok, nil
}

// Verify reports whether raw is a well-formed, unexpired token.
func (s *Service) Verify(raw string) bool {
	_, err := s.Parse(raw)
	return err == nil
}

func (s *Service) sign(expiresAtMillis int64, projectID string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(strconv.FormatInt(expiresAtMillis, 10)))
	mac.Write([]byte(Delimiter))
	mac.Write([]byte(projectID))
	return hex.EncodeToString(mac.Sum(nil))
}
