package httpserver

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/internal/core/ports"
	customMiddleware "github.com/thepotential/verification-service/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

// RateLimitConfig configures the per-IP limiter on token-issuing routes.
type RateLimitConfig struct {
	Counter           customMiddleware.WindowCounter
	RequestsPerMinute int
	Window            time.Duration
	KeyPrefix         string
}

type ServerDeps struct {
	AccountService      ports.AccountService
	VerificationService ports.VerificationService
	SessionService      ports.SessionService
	RateLimit           RateLimitConfig
	HealthCheckers      []ports.HealthChecker
}

type Server struct {
	echo            *echo.Echo
	config          *ServerConfig
	logger          *logrus.Logger
	accountSvc      ports.AccountService
	verificationSvc ports.VerificationService
	sessionSvc      ports.SessionService
	middleware      *customMiddleware.Collection
	healthCheckers  []ports.HealthChecker
}

// requestValidator adapts go-playground/validator to echo.Validator.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	server := &Server{
		echo:            e,
		config:          serverConfig,
		logger:          logger,
		accountSvc:      deps.AccountService,
		verificationSvc: deps.VerificationService,
		sessionSvc:      deps.SessionService,
		healthCheckers:  deps.HealthCheckers,
		middleware: customMiddleware.NewCollection(
			deps.SessionService,
			deps.RateLimit.Counter,
			deps.RateLimit.RequestsPerMinute,
			deps.RateLimit.Window,
			deps.RateLimit.KeyPrefix,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
