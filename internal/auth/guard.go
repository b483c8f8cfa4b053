package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	apperrors "eventboard/internal/errors"
	"eventboard/internal/metrics"
	"eventboard/internal/model"
)

// UserResolver looks up the user a token refers to. It returns
// apperrors.ErrUserNotFound when the user no longer exists.
type UserResolver interface {
	ResolveUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Guard authenticates requests carrying "Authorization: Bearer <token>" and
// attaches the caller's Identity to the echo context.
type Guard struct {
	tokens  *TokenService
	revoked RevocationStore
	users   UserResolver
}

// NewGuard creates a new auth guard.
func NewGuard(tokens *TokenService, revoked RevocationStore, users UserResolver) *Guard {
	return &Guard{tokens: tokens, revoked: revoked, users: users}
}

// Middleware extracts and verifies the bearer token, then resolves its
// subject against the credential store. Requests without a valid token or
// whose user no longer exists are rejected with 401.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	extract := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.tokens.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var parseErr *echojwt.TokenParsingError
			if errors.Is(err, ErrInvalidToken) || errors.As(err, &parseErr) {
				return g.reject(c, "invalid_token", apperrors.ErrInvalidToken)
			}
			return g.reject(c, "missing_token", apperrors.ErrMissingToken)
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return extract(g.resolve(next))
	}
}

func (g *Guard) resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return g.reject(c, "invalid_token", apperrors.ErrInvalidToken)
		}
		ctx := c.Request().Context()

		if revoked, _ := g.revoked.IsRevoked(ctx, claims.ID); revoked {
			return g.reject(c, "revoked_token", apperrors.ErrInvalidToken)
		}

		userID, err := claims.UserID()
		if err != nil {
			return g.reject(c, "invalid_token", apperrors.ErrInvalidToken)
		}
		user, err := g.users.ResolveUser(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return g.reject(c, "unknown_user", apperrors.ErrInvalidToken)
			}
			zerolog.Ctx(ctx).Error().Err(err).Msg("resolve token subject")
			httpErr := apperrors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}

		identity := Identity{UserID: user.ID, Role: user.Role}
		SetIdentity(c, identity)

		logger := zerolog.Ctx(ctx).With().Str("user_id", user.ID.String()).Logger()
		c.SetRequest(c.Request().WithContext(logger.WithContext(ctx)))

		return next(c)
	}
}

// RequireAdmin rejects callers whose resolved identity is not an admin. It
// must run after Middleware.
func (g *Guard) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return g.reject(c, "missing_identity", apperrors.ErrMissingToken)
			}
			if !identity.IsAdmin() {
				metrics.AuthFailures.WithLabelValues("not_admin").Inc()
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrAdminRequired)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

func (g *Guard) reject(c echo.Context, reason string, err *apperrors.Error) error {
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	zerolog.Ctx(c.Request().Context()).Warn().
		Str("reason", reason).
		Str("path", c.Path()).
		Msg("request rejected by auth guard")
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
