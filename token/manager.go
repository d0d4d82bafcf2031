package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Marker kinds carried in the typ claim.
const (
	KindIdentity = "identity"
	KindVerified = "session"
)

var (
	// ErrInvalid is returned for any token that fails parsing, signature,
	// algorithm, or claim validation.
	ErrInvalid = errors.New("invalid marker token")
)

// Claims are the marker token claims. Kind distinguishes the short-lived
// identity marker from the long-lived verified-session marker.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	Kind     string `json:"typ"`
}

// Manager signs and parses marker tokens. HS256 only; the algorithm is
// pinned on both the issue and parse paths.
type Manager struct {
	key         []byte
	issuer      string
	identityTTL time.Duration
	verifiedTTL time.Duration
}

// NewManager creates a Manager. The key must be at least 32 bytes.
func NewManager(key []byte, issuer string, identityTTL, verifiedTTL time.Duration) (*Manager, error) {
	if len(key) < 32 {
		return nil, errors.New("marker token key must be at least 32 bytes")
	}
	if identityTTL <= 0 || verifiedTTL <= 0 {
		return nil, errors.New("marker token lifetimes must be positive")
	}
	return &Manager{
		key:         key,
		issuer:      issuer,
		identityTTL: identityTTL,
		verifiedTTL: verifiedTTL,
	}, nil
}

// IssueIdentity signs the short-lived identity marker token.
func (m *Manager) IssueIdentity(userID, username, role, sessionID string) (string, error) {
	return m.issue(userID, username, role, sessionID, KindIdentity, m.identityTTL)
}

// IssueVerified signs the long-lived verified-session marker token.
func (m *Manager) IssueVerified(userID, username, role, sessionID string) (string, error) {
	return m.issue(userID, username, role, sessionID, KindVerified, m.verifiedTTL)
}

func (m *Manager) issue(userID, username, role, sessionID, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{sessionID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		Role:     role,
		Kind:     kind,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// Parse validates signature, algorithm, issuer, and expiry, and returns the
// claims. Tokens of the wrong kind are the caller's concern.
func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.Kind != KindIdentity && claims.Kind != KindVerified {
		return nil, ErrInvalid
	}
	return claims, nil
}

// SessionID extracts the session id the token was bound to.
func (c *Claims) SessionID() string {
	if len(c.Audience) == 0 {
		return ""
	}
	return c.Audience[0]
}
