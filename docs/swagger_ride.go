package docs

// @title           Ride Service API
// @version         1.0
// @description     Requesters book an ambulance, follow its status and cancel it while it is still pending or accepted. State between calls is keyed by the X-Session-ID header.

// @host      localhost:3000
// @BasePath  /
