package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

// Session is the authenticated identity resolved for one request.
type Session struct {
	ID     string
	UserID int64
	Role   models.UserRole
}

// Config controls token signing and cookie delivery.
type Config struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager establishes, resolves and destroys sessions. The cookie value
// is a signed token referencing a server-side record, so logout
// invalidates the session immediately even though the token itself is
// stateless.
type Manager struct {
	store Store
	cfg   Config
}

// NewManager constructs a session manager.
func NewManager(store Store, cfg Config) *Manager {
	return &Manager{store: store, cfg: cfg}
}

type tokenClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Establish creates a session record for the user and returns the signed
// token to be set as a cookie.
func (m *Manager) Establish(ctx context.Context, user *models.User) (string, error) {
	id := uuid.NewString()
	if err := m.store.Save(ctx, id, Data{UserID: user.ID, Role: user.Role}, m.cfg.TTL); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	claims := &tokenClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve verifies the signed token and loads its server-side record.
// A tampered, expired or destroyed session yields an unauthorized error.
func (m *Manager) Resolve(ctx context.Context, tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session token")
	}

	data, err := m.store.Load(ctx, claims.SessionID)
	if err != nil {
		if err == ErrNotFound {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	return &Session{ID: claims.SessionID, UserID: data.UserID, Role: data.Role}, nil
}

// Destroy deletes the server-side record, invalidating every copy of the
// token. It is safe to call for an already-destroyed session.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// CookieName returns the configured cookie name.
func (m *Manager) CookieName() string { return m.cfg.CookieName }

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Secure reports whether the cookie requires HTTPS.
func (m *Manager) Secure() bool { return m.cfg.Secure }
