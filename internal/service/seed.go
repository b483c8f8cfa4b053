package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "eventboard/internal/errors"
	"eventboard/internal/model"
	"eventboard/internal/repository"
)

// SeedAdmin makes sure an admin account exists for email. An existing user is
// promoted and keeps its password. The boolean reports whether a new account
// was created.
func SeedAdmin(ctx context.Context, users repository.UserRepository, name, email, password string) (*model.User, bool, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return nil, false, apperrors.NewValidation("admin email and password are required")
	}
	if name == "" {
		name = "Administrator"
	}

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, false, nil
		}
		existing.Role = model.RoleAdmin
		if err := users.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("promote admin: %w", err)
		}
		return existing, false, nil
	case !repository.IsNotFound(err):
		return nil, false, fmt.Errorf("find admin: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	admin := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return admin, true, nil
}
