package types

// PushType is the discriminator of messages delivered over the driver channel.
type PushType string

func (s PushType) String() string {
	return string(s)
}

const (
	PushNewRideRequest PushType = "new_ride_request"
	PushRideCancelled  PushType = "ride_cancelled"
)

// ConnStatus is reported by the push channel on connection changes.
type ConnStatus string

const (
	ConnConnected    ConnStatus = "connected"
	ConnDisconnected ConnStatus = "disconnected"
	ConnError        ConnStatus = "error"
)

// Broker routing keys on the ride exchange.
const (
	RoutingRideRequested = "ride.requested"
	RoutingRideCancelled = "ride.cancelled"
)
