// internal/mockapi/auth.go
package mockapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")

type Session struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ProfileID string `json:"profileId,omitempty"`
}

// Login checks a demo user's password. Unknown emails and wrong passwords fail the same way.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	var hash, role, profileID string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash, role, profile_id FROM users WHERE email = ?`, email).
		Scan(&hash, &role, &profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Session{
		Token:     uuid.New().String(),
		Email:     email,
		Role:      role,
		ProfileID: profileID,
	}, nil
}
