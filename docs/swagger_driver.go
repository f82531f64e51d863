package docs

// @title           Driver Service API
// @version         1.0
// @description     Push channel for drivers. Each driver opens one websocket and receives new_ride_request and ride_cancelled messages.

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
