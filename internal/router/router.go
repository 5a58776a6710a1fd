package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"safewatch/internal/auth"
	"safewatch/internal/config"
	"safewatch/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	incidentHandler *handler.IncidentHandler,
	archiveHandler *handler.ArchiveHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/login", authHandler.Login)
	api.GET("/users", userHandler.ListUsers)
	api.GET("/incidents", incidentHandler.ListOpen)
	api.POST("/incidents", incidentHandler.Report)
	api.GET("/incidents/:id", incidentHandler.Get)
	api.GET("/resolved-incidents", incidentHandler.ListResolved)
	api.GET("/incident-archive", archiveHandler.Fetch)

	// Secured routes (require JWT authentication). Role checks live in
	// the service layer where they can see the locked row.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &auth.Claims{}
		},
	}))

	secured.PATCH("/incidents/:id/assign", incidentHandler.Assign)
	secured.PATCH("/incidents/:id/resolve", incidentHandler.Resolve)
	secured.GET("/my-assigned-incidents", incidentHandler.ListMyAssigned)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
