// Package auth handles dashboard logins: bcrypt password checks, cookie
// sessions backed by the database and per-client login throttling.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/TobiSchelling/expedanalysis/internal/database"
)

// CookieName is the session cookie.
const CookieName = "session"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no valid session")
)

// Store is the persistence auth needs. *database.DB implements it.
type Store interface {
	GetUserByEmail(email string) (*database.User, error)
	GetUserByID(id int64) (*database.User, error)
	CreateSession(token string, userID int64, expiresAt time.Time) error
	GetSession(token string, now time.Time) (*database.Session, error)
	DeleteSession(token string) error
}

// HashPassword returns a bcrypt hash suitable for CreateUser.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

// Manager issues and resolves sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager creates a Manager whose sessions last ttl. secure marks the
// cookie HTTPS-only.
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure, now: time.Now}
}

// Authenticate checks email and password. Unknown accounts and wrong
// passwords both return ErrInvalidCredentials.
func (m *Manager) Authenticate(email, password string) (*database.User, error) {
	u, err := m.store.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and, on success, stores a new session and sets its
// cookie on w.
func (m *Manager) Login(w http.ResponseWriter, email, password string) (*database.User, error) {
	u, err := m.Authenticate(email, password)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	expires := m.now().Add(m.ttl)
	if err := m.store.CreateSession(token, u.ID, expires); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return u, nil
}

// Logout deletes the request's session, if any, and clears the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if err := m.store.DeleteSession(c.Value); err != nil {
			return fmt.Errorf("deleting session: %w", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// UserFromRequest resolves the session cookie to its user. Missing,
// malformed, unknown and expired sessions return ErrNoSession.
func (m *Manager) UserFromRequest(r *http.Request) (*database.User, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return nil, ErrNoSession
	}

	s, err := m.store.GetSession(c.Value, m.now())
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	if s == nil {
		return nil, ErrNoSession
	}

	u, err := m.store.GetUserByID(s.UserID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if u == nil {
		return nil, ErrNoSession
	}
	return u, nil
}
