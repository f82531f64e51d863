package models

// Session state keys shared by the requester and driver agents.
const (
	SessionKeyUserLocation    = "userLocation"
	SessionKeyCurrentLocation = "currentLocation"
	SessionKeyLastRideID      = "lastRideId"
	SessionKeyUserID          = "userId"
	SessionKeyToken           = "token"
	SessionKeyRole            = "role"

	SessionKeyDevicePosition     = "devicePosition"
	SessionKeyLocationPermission = "locationPermission"
)

// locationPermission values. Only PermissionDenied blocks sampling.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// LocationKeys is the fallback chain for cached requester coordinates.
var LocationKeys = []string{SessionKeyUserLocation, SessionKeyCurrentLocation}
