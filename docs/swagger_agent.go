package docs

// @title           Driver Agent Dashboard
// @version         1.0
// @description     Local API of one driver's session: open requests, current ride, accept and status updates.

// @host      localhost:3010
// @BasePath  /
