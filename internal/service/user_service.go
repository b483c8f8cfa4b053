package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"eventboard/internal/auth"
	"eventboard/internal/cache"
	apperrors "eventboard/internal/errors"
	"eventboard/internal/metrics"
	"eventboard/internal/model"
	"eventboard/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// UserPatch lists the user fields an admin intends to change. Nil means
// "leave unchanged".
type UserPatch struct {
	Name  *string
	Email *string
	Role  *model.Role
}

// UserService exposes registration, login and admin user management.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	AdminLogin(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, claims *auth.Claims) error
	ResolveUser(ctx context.Context, id uuid.UUID) (*model.User, error)

	ListUsers(ctx context.Context, actor auth.Identity) ([]model.User, error)
	GetUser(ctx context.Context, actor auth.Identity, id uuid.UUID) (*model.User, error)
	UpdateUser(ctx context.Context, actor auth.Identity, id uuid.UUID, patch UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, actor auth.Identity, id uuid.UUID) error
}

type userService struct {
	users   repository.UserRepository
	events  repository.EventRepository
	tokens  *auth.TokenService
	revoked auth.RevocationStore
	cache   *cache.Client
}

var _ auth.UserResolver = (*userService)(nil)

// NewUserService builds a UserService. cache may be nil.
func NewUserService(
	users repository.UserRepository,
	events repository.EventRepository,
	tokens *auth.TokenService,
	revoked auth.RevocationStore,
	cache *cache.Client,
) UserService {
	return &userService{
		users:   users,
		events:  events,
		tokens:  tokens,
		revoked: revoked,
		cache:   cache,
	}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with a bcrypt-hashed password.
func (s *userService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidation("All fields (name, email, password) are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the unique index decides races between the check and the insert
		if repository.IsDuplicate(err) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

// Login authenticates a user and returns a signed token.
func (s *userService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("user", outcome(err)).Inc()
		return "", nil, err
	}
	return s.issue(ctx, user, "user")
}

// AdminLogin authenticates an admin. Non-admin accounts get the same failure
// as a wrong password.
func (s *userService) AdminLogin(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if errors.Is(err, apperrors.ErrInvalidCredentials) || (err == nil && !user.IsAdmin()) {
		metrics.LoginAttempts.WithLabelValues("admin", "invalid_credentials").Inc()
		return "", nil, apperrors.ErrInvalidAdminCredentials
	}
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("admin", outcome(err)).Inc()
		return "", nil, err
	}
	return s.issue(ctx, user, "admin")
}

func (s *userService) issue(ctx context.Context, user *model.User, kind string) (string, *model.User, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(kind, "error").Inc()
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	metrics.LoginAttempts.WithLabelValues(kind, "success").Inc()
	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Str("kind", kind).Msg("login succeeded")
	return token, user, nil
}

// authenticate returns ErrInvalidCredentials for both unknown emails and wrong
// passwords, and runs a bcrypt comparison in both cases.
func (s *userService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue []byte
)

func dummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHashValue, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	})
	return dummyHashValue
}

func outcome(err error) string {
	if apperrors.KindOf(err) == apperrors.KindUnauthenticated {
		return "invalid_credentials"
	}
	return "error"
}

// Logout revokes the presented token until it would expire.
func (s *userService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.ErrInvalidToken
	}
	if err := s.revoked.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ResolveUser returns the user a token refers to, served from cache when possible.
func (s *userService) ResolveUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) && cached.ID == id {
		return &cached, nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func requireAdmin(actor auth.Identity) error {
	if !actor.IsAdmin() {
		return apperrors.ErrAdminRequired
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context, actor auth.Identity) ([]model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, actor auth.Identity, id uuid.UUID) (*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.findUser(ctx, id)
}

func (s *userService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor auth.Identity, id uuid.UUID, patch UserPatch) (*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidation("Name cannot be empty")
		}
		user.Name = name
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return nil, apperrors.NewValidation("Email cannot be empty")
		}
		if email != user.Email {
			other, err := s.users.FindByEmail(ctx, email)
			if err == nil && other != nil && other.ID != user.ID {
				return nil, apperrors.ErrEmailTaken
			}
			if err != nil && !repository.IsNotFound(err) {
				return nil, fmt.Errorf("check email: %w", err)
			}
		}
		user.Email = email
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, apperrors.NewValidation("Invalid role")
		}
		user.Role = *patch.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))

	zerolog.Ctx(ctx).Info().
		Str("target_user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user updated")
	return user, nil
}

// DeleteUser removes a user. Users that still own events cannot be deleted.
func (s *userService) DeleteUser(ctx context.Context, actor auth.Identity, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}

	owned, err := s.events.CountByCreator(ctx, id)
	if err != nil {
		return fmt.Errorf("count user events: %w", err)
	}
	if owned > 0 {
		return apperrors.ErrUserHasEvents
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	zerolog.Ctx(ctx).Info().Str("target_user_id", id.String()).Msg("user deleted")
	return nil
}
