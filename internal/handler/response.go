package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"eventboard/internal/auth"
	apperrors "eventboard/internal/errors"
)

// MessageResponse is the body of responses that carry only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps err to its HTTP status. Internal failures are logged and
// replaced with a generic message.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().
			Err(err).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// bind decodes and validates the request body. A missing required field
// yields requiredMsg.
func bind(c echo.Context, req interface{}, requiredMsg string) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.NewValidation(validationMessage(err, requiredMsg))
	}
	return nil
}

func validationMessage(err error, requiredMsg string) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request"
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return requiredMsg
		}
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("Invalid %s", field)
	}
}

func pathID(c echo.Context, notFound *apperrors.Error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// ids that cannot exist are reported as missing
		return uuid.Nil, notFound
	}
	return id, nil
}

func identity(c echo.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, apperrors.ErrMissingToken
	}
	return id, nil
}
