package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventboard/internal/auth"
	apperrors "eventboard/internal/errors"
	"eventboard/internal/model"
	"eventboard/internal/repository"
)

var (
	adminActor = auth.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	userActor  = auth.Identity{UserID: uuid.New(), Role: model.RoleUser}
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestUserService(users repository.UserRepository, events repository.EventRepository, revoked auth.RevocationStore) (UserService, *auth.TokenService) {
	tokens := auth.NewTokenService("test-secret", time.Hour)
	return NewUserService(users, events, tokens, revoked, nil), tokens
}

func TestUserService_Register(t *testing.T) {
	storeErr := errors.New("connection refused")

	tests := []struct {
		name          string
		userName      string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
		expectedKind  apperrors.Kind
	}{
		{
			name:     "successful registration",
			userName: "Ann",
			email:    "a@x.com",
			password: "pw12345",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "email is normalized",
			userName: "Ann",
			email:    "  A@X.com ",
			password: "pw12345",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "user already exists",
			userName: "Ann",
			email:    "a@x.com",
			password: "pw12345",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{Email: "a@x.com"}, nil)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
			expectedKind:  apperrors.KindConflict,
		},
		{
			name:     "unique index wins a concurrent registration",
			userName: "Ann",
			email:    "a@x.com",
			password: "pw12345",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrDuplicate)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
			expectedKind:  apperrors.KindConflict,
		},
		{
			name:     "store failure is internal",
			userName: "Ann",
			email:    "a@x.com",
			password: "pw12345",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, storeErr)
			},
			expectedError: storeErr,
			expectedKind:  apperrors.KindInternal,
		},
		{
			name:          "missing password",
			userName:      "Ann",
			email:         "a@x.com",
			setupMock:     func(m *MockUserRepository) {},
			expectedKind:  apperrors.KindValidation,
			expectedError: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc, _ := newTestUserService(mockRepo, new(MockEventRepository), new(MockRevocationStore))
			user, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
				if tt.expectedKind != apperrors.KindValidation {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, "a@x.com", user.Email)
				assert.Equal(t, tt.userName, user.Name)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.password)))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_RegisterTwiceKeepsOneRecord(t *testing.T) {
	repo := newMemUserRepository()
	svc, _ := newTestUserService(repo, newMemEventRepository(), new(MockRevocationStore))
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ann", "a@x.com", "pw12345")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Ann Again", "a@x.com", "other-pw")
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].Name)
}

func TestUserService_Login(t *testing.T) {
	user := &model.User{
		ID:           uuid.New(),
		Email:        "a@x.com",
		PasswordHash: hashed(t, "pw12345"),
		Role:         model.RoleUser,
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "a@x.com",
			password: "pw12345",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "a@x.com",
			password: "nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "ghost@x.com",
			password: "pw12345",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, repository.ErrNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc, tokens := newTestUserService(mockRepo, new(MockEventRepository), new(MockRevocationStore))
			token, got, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				claims, err := tokens.Verify(token)
				require.NoError(t, err)
				subject, err := claims.UserID()
				require.NoError(t, err)
				assert.Equal(t, user.ID, subject)
				assert.Equal(t, model.RoleUser, claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_LoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMemUserRepository()
	svc, _ := newTestUserService(repo, newMemEventRepository(), new(MockRevocationStore))
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ann", "a@x.com", "pw12345")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login(ctx, "a@x.com", "bad")
	_, _, unknownEmail := svc.Login(ctx, "nobody@x.com", "bad")

	assert.Equal(t, wrongPassword, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUserService_AdminLogin(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Email: "root@x.com", PasswordHash: hashed(t, "rootpw"), Role: model.RoleAdmin}
	plain := &model.User{ID: uuid.New(), Email: "a@x.com", PasswordHash: hashed(t, "pw12345"), Role: model.RoleUser}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "root@x.com").Return(admin, nil)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(plain, nil)
	mockRepo.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, repository.ErrNotFound)

	svc, tokens := newTestUserService(mockRepo, new(MockEventRepository), new(MockRevocationStore))
	ctx := context.Background()

	token, _, err := svc.AdminLogin(ctx, "root@x.com", "rootpw")
	require.NoError(t, err)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, _, err = svc.AdminLogin(ctx, "a@x.com", "pw12345")
	assert.Equal(t, apperrors.ErrInvalidAdminCredentials, err)

	_, _, err = svc.AdminLogin(ctx, "root@x.com", "wrong")
	assert.Equal(t, apperrors.ErrInvalidAdminCredentials, err)

	_, _, err = svc.AdminLogin(ctx, "ghost@x.com", "whatever")
	assert.Equal(t, apperrors.ErrInvalidAdminCredentials, err)
}

func TestUserService_Logout(t *testing.T) {
	revoked := new(MockRevocationStore)
	svc, tokens := newTestUserService(new(MockUserRepository), new(MockEventRepository), revoked)

	token, err := tokens.Issue(uuid.New(), model.RoleUser)
	require.NoError(t, err)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)

	revoked.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), claims))
	revoked.AssertExpectations(t)

	assert.ErrorIs(t, svc.Logout(context.Background(), nil), apperrors.ErrInvalidToken)
}

func TestUserService_ResolveUser(t *testing.T) {
	known := &model.User{ID: uuid.New(), Role: model.RoleUser}
	missing := uuid.New()

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, known.ID).Return(known, nil)
	mockRepo.On("FindByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	svc, _ := newTestUserService(mockRepo, new(MockEventRepository), new(MockRevocationStore))
	resolver := svc.(auth.UserResolver)

	got, err := resolver.ResolveUser(context.Background(), known.ID)
	require.NoError(t, err)
	assert.Equal(t, known.ID, got.ID)

	_, err = resolver.ResolveUser(context.Background(), missing)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_AdminOperationsRequireAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventRepository)
	svc, _ := newTestUserService(mockRepo, mockEvents, new(MockRevocationStore))
	ctx := context.Background()
	target := uuid.New()
	name := "Mallory"

	_, err := svc.ListUsers(ctx, userActor)
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)

	_, err = svc.GetUser(ctx, userActor, target)
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)

	_, err = svc.UpdateUser(ctx, userActor, target, UserPatch{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)

	err = svc.DeleteUser(ctx, userActor, target)
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)

	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
	mockEvents.AssertNotCalled(t, "CountByCreator", mock.Anything, mock.Anything)
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepository()
	svc, _ := newTestUserService(repo, newMemEventRepository(), new(MockRevocationStore))

	ann, err := svc.Register(ctx, "Ann", "a@x.com", "pw12345")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "Bob", "b@x.com", "pw12345")
	require.NoError(t, err)

	t.Run("promote to admin", func(t *testing.T) {
		role := model.RoleAdmin
		updated, err := svc.UpdateUser(ctx, adminActor, ann.ID, UserPatch{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, updated.Role)
		assert.Equal(t, "Ann", updated.Name)
	})

	t.Run("email clash", func(t *testing.T) {
		email := "B@x.com"
		_, err := svc.UpdateUser(ctx, adminActor, ann.ID, UserPatch{Email: &email})
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	})

	t.Run("invalid role", func(t *testing.T) {
		role := model.Role("root")
		_, err := svc.UpdateUser(ctx, adminActor, bob.ID, UserPatch{Role: &role})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("empty name", func(t *testing.T) {
		name := "  "
		_, err := svc.UpdateUser(ctx, adminActor, bob.ID, UserPatch{Name: &name})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		name := "Ghost"
		_, err := svc.UpdateUser(ctx, adminActor, uuid.New(), UserPatch{Name: &name})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	withEvents := uuid.New()
	without := uuid.New()
	missing := uuid.New()

	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventRepository)
	mockRepo.On("FindByID", mock.Anything, withEvents).Return(&model.User{ID: withEvents}, nil)
	mockRepo.On("FindByID", mock.Anything, without).Return(&model.User{ID: without}, nil)
	mockRepo.On("FindByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)
	mockEvents.On("CountByCreator", mock.Anything, withEvents).Return(int64(2), nil)
	mockEvents.On("CountByCreator", mock.Anything, without).Return(int64(0), nil)
	mockRepo.On("Delete", mock.Anything, without).Return(nil)

	svc, _ := newTestUserService(mockRepo, mockEvents, new(MockRevocationStore))

	assert.ErrorIs(t, svc.DeleteUser(ctx, adminActor, withEvents), apperrors.ErrUserHasEvents)
	assert.NoError(t, svc.DeleteUser(ctx, adminActor, without))
	assert.ErrorIs(t, svc.DeleteUser(ctx, adminActor, missing), apperrors.ErrUserNotFound)

	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, withEvents)
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("List", mock.Anything).Return([]model.User{{Name: "Ann"}, {Name: "Bob"}}, nil)

	svc, _ := newTestUserService(mockRepo, new(MockEventRepository), new(MockRevocationStore))
	users, err := svc.ListUsers(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
