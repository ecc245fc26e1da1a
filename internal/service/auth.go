package service

import (
	"context"
	"strings"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/events"
	"marketplace/backend/internal/store"
)

// AuthService identifies users by phone number alone. Proving ownership of
// the phone is left to the caller.
type AuthService struct {
	repo   store.Repository
	notify *notifier
}

// Register creates a buyer or seller. Unrecognised role labels register a
// buyer.
func (s *AuthService) Register(ctx context.Context, username string, phone string, roleLabel string) (*domain.User, error) {
	phone = strings.TrimSpace(phone)
	existing, err := s.repo.FindUserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneRegistered
	}

	user, err := s.repo.AddUser(ctx, strings.TrimSpace(username), phone, domain.RoleFromLabel(roleLabel))
	if err != nil {
		return nil, err
	}
	s.notify.publish(ctx, events.SubjectUserRegistered, events.UserRegistered{
		UserID:   user.ID,
		Username: user.Username,
		Phone:    user.Phone,
		Role:     string(user.Role),
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, phone string) (*domain.User, error) {
	user, err := s.repo.FindUserByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotRegistered
	}
	if user.IsBanned() {
		return nil, ErrAccountBanned
	}
	return user, nil
}
