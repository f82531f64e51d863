package types

type ServiceMode string

// Ride Service - accepts ambulance bookings and answers status lookups for requesters
// Driver Service - keeps driver websocket channels and fans ride events out to them
// Auth Service - logs drivers in and issues access tokens
// Driver Agent - runs one driver's session controller and its local dashboard
const (
	RideService   ServiceMode = "ride-service"
	DriverService ServiceMode = "driver-service"
	AuthService   ServiceMode = "auth-service"
	DriverAgent   ServiceMode = "driver-agent"
)

func (m ServiceMode) String() string {
	return string(m)
}

// Enum для роли пользователя
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleDriver    UserRole = "driver"
	RoleAnonymous UserRole = "anonymous"
)

// GeoMode selects where the driver agent samples its position from.
type GeoMode string

const (
	GeoFixed    GeoMode = "fixed"
	GeoDevice   GeoMode = "device"
	GeoDisabled GeoMode = "disabled"
)
