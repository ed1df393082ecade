// Package session holds the signed-in identity for the single browsing
// session the gateway serves. Auth is mock: identities are fabricated
// locally and written through to the peachme-user store slot, loaded
// once at startup. No other code mutates the slot.
package session

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"peachme/api-gateway/internal/store"
	"peachme/api-gateway/models"
)

// Errors for auth operations.
var (
	ErrNotSignedIn        = errors.New("not signed in")
	ErrMissingCredentials = errors.New("email and password are required")
)

// Session is the explicit session object handlers receive. It caches
// the current user and writes every change through to the store.
type Session struct {
	store  store.Store
	logger *logrus.Logger
	user   *models.User
}

// Load reads any previously stored identity. A missing slot simply
// means signed out.
func Load(st store.Store, logger *logrus.Logger) *Session {
	s := &Session{store: st, logger: logger}
	var user models.User
	switch err := st.Get(store.KeyUser, &user); {
	case err == nil:
		s.user = &user
		logger.WithField("email", user.Email).Info("Restored signed-in user")
	case errors.Is(err, store.ErrNotFound):
	default:
		logger.WithField("error", err.Error()).Warn("Could not restore stored user")
	}
	return s
}

// User returns the current identity, or nil when signed out.
func (s *Session) User() *models.User {
	return s.user
}

// SignUp creates a mock identity under the given name and signs it in.
func (s *Session) SignUp(name, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	user := models.User{
		ID:    "user-" + uuid.NewString(),
		Name:  name,
		Email: email,
	}
	return s.signIn(user)
}

// SignIn fabricates a mock identity for the email, deriving the display
// name from its local part, and signs it in.
func (s *Session) SignIn(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	name, _, _ := strings.Cut(email, "@")
	user := models.User{
		ID:    "user-" + uuid.NewString(),
		Name:  name,
		Email: email,
	}
	return s.signIn(user)
}

func (s *Session) signIn(user models.User) (*models.User, error) {
	if err := s.store.Set(store.KeyUser, user); err != nil {
		return nil, err
	}
	s.user = &user
	s.logger.WithField("email", user.Email).Info("User signed in")
	return &user, nil
}

// SignOut clears the identity and its store slot.
func (s *Session) SignOut() error {
	if s.user == nil {
		return ErrNotSignedIn
	}
	if err := s.store.Delete(store.KeyUser); err != nil {
		return err
	}
	s.logger.WithField("email", s.user.Email).Info("User signed out")
	s.user = nil
	return nil
}
