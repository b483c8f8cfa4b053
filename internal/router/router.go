package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"eventboard/internal/auth"
	"eventboard/internal/handler"
	"eventboard/internal/metrics"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth   *handler.AuthHandler
	Users  *handler.UserHandler
	Events *handler.EventHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, logger zerolog.Logger, guard *auth.Guard, h Handlers) {
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/register", h.Auth.Register)
	users.POST("/login", h.Auth.Login)

	secured := users.Group("", guard.Middleware())
	secured.POST("/logout", h.Auth.Logout)
	secured.GET("/me", h.Auth.Me)
	secured.POST("/events", h.Events.Create)
	secured.GET("/events", h.Events.ListOwn)
	secured.GET("/events/:id", h.Events.Get)
	secured.PUT("/events/:id", h.Events.Update)
	secured.DELETE("/events/:id", h.Events.Delete)

	admin := api.Group("/admin")
	admin.POST("/login", h.Auth.AdminLogin)

	// services re-check the role; this only rejects early
	adminOnly := admin.Group("", guard.Middleware(), guard.RequireAdmin())
	adminOnly.GET("/users", h.Users.ListUsers)
	adminOnly.GET("/users/:id", h.Users.GetUser)
	adminOnly.PUT("/users/:id", h.Users.UpdateUser)
	adminOnly.DELETE("/users/:id", h.Users.DeleteUser)

	adminOnly.GET("/events", h.Events.ListAll)
	adminOnly.POST("/events", h.Events.Create)
	adminOnly.GET("/events/:id", h.Events.Get)
	adminOnly.PUT("/events/:id", h.Events.SetStatus)
	adminOnly.PATCH("/events/:id", h.Events.Update)
	adminOnly.DELETE("/events/:id", h.Events.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
