package docs

// @title           Auth Service API
// @version         1.0
// @description     Driver login and token checks.

// @host      localhost:3005
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
