package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	auth := api.Group("/auth")

	// the limiter guards the routes that send email and the code check: a
	// wrong code keeps the token, so unthrottled guesses could walk the
	// 6-digit space within the TTL
	limited := s.middleware.RateLimit.Handler()
	auth.POST("/signup", s.signup, limited)
	auth.POST("/resend-verification", s.resendVerification, limited)
	auth.POST("/send-magic-link", s.sendMagicLink, limited)
	auth.POST("/verify-code", s.verifyCode, limited)

	auth.GET("/verify-email", s.verifyEmail)
	auth.POST("/verify-email", s.verifyEmail)
	auth.GET("/verify-magic-link", s.verifyMagicLink)

	admin := api.Group("/admin", s.middleware.JWT.RequireJWT(), s.middleware.JWT.RequireAdmin())
	admin.DELETE("/tokens", s.purgeTokens)
	admin.GET("/users/:id", s.getAccount)
	admin.DELETE("/users/:id", s.deleteAccount)
}
