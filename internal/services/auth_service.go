package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cafestock/internal/domain"
	"cafestock/internal/repos"
)

type AuthService struct {
	Store *repos.Store
	Cost  int           // bcrypt cost, 0 means bcrypt.DefaultCost
	TTL   time.Duration // session lifetime, 0 means no expiry
	Now   func() time.Time
}

func (s *AuthService) hash(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Register creates the account and binds sid to it.
func (s *AuthService) Register(ctx context.Context, sid, username, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrMissingField
	}
	if role == "" {
		role = domain.RoleStaff
	}
	if _, err := s.Store.Users.ByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	h, err := s.hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Username:  username,
		Hash:      h,
		Role:      role,
		CreatedAt: domain.FormatTime(now(s.Now)),
	}
	// the account only exists together with its first session
	err = s.Store.InTx(ctx, func(r *repos.Repos) error {
		if err := r.Users.Create(ctx, u); err != nil {
			return err
		}
		return r.Users.BindSession(ctx, sid, u.ID, u.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and binds sid. Unknown users and wrong
// passwords both yield ErrBadCredentials.
func (s *AuthService) Login(ctx context.Context, sid, username, password string) (*domain.User, error) {
	u, err := s.Store.Users.ByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, domain.ErrBadCredentials
	}
	if err := s.Store.Users.BindSession(ctx, sid, u.ID, domain.FormatTime(now(s.Now))); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Store.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	if sid == "" {
		return nil, domain.ErrNotFound
	}
	return s.Store.Users.SessionUser(ctx, sid, s.cutoff())
}

// PurgeExpired removes sessions older than the TTL.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	if s.TTL <= 0 {
		return 0, nil
	}
	return s.Store.Users.PurgeSessions(ctx, s.cutoff())
}

func (s *AuthService) cutoff() string {
	if s.TTL <= 0 {
		return ""
	}
	return domain.FormatTime(now(s.Now).Add(-s.TTL))
}

// EnsureAdmin creates an admin account when username is free. Existing
// accounts are left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	if _, err := s.Store.Users.ByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	h, err := s.hash(password)
	if err != nil {
		return false, err
	}
	u := &domain.User{Username: username, Hash: h, Role: domain.RoleAdmin, CreatedAt: domain.FormatTime(now(s.Now))}
	if err := s.Store.Users.Create(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}
