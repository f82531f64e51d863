package types

// RideStatus is the lifecycle state of a ride request.
type RideStatus string

const (
	StatusPending   RideStatus = "pending"
	StatusAccepted  RideStatus = "accepted"
	StatusEnRoute   RideStatus = "en_route"
	StatusPickedUp  RideStatus = "picked_up"
	StatusCompleted RideStatus = "completed"
	StatusCancelled RideStatus = "cancelled"
)

var lifecycle = []RideStatus{StatusPending, StatusAccepted, StatusEnRoute, StatusPickedUp, StatusCompleted}

func (s RideStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s RideStatus) Valid() bool {
	return s == StatusCancelled || s.index() >= 0
}

func (s RideStatus) index() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the immediate forward successor of s.
// Terminal and unknown statuses have none.
func (s RideStatus) Next() (RideStatus, bool) {
	i := s.index()
	if i < 0 || i == len(lifecycle)-1 {
		return "", false
	}
	return lifecycle[i+1], true
}

// CanAdvanceTo reports whether target is the immediate successor of s.
// Cancellation is not an advance.
func (s RideStatus) CanAdvanceTo(target RideStatus) bool {
	next, ok := s.Next()
	return ok && next == target
}

// CanCancel reports whether a requester may still cancel a ride in status s.
func (s RideStatus) CanCancel() bool {
	return s == StatusPending || s == StatusAccepted
}

// IsActive is true for every status before completion or cancellation.
func (s RideStatus) IsActive() bool {
	return s != StatusCompleted && s != StatusCancelled && s.Valid()
}

// IsTracking is true while the assigned driver reports its position.
func (s RideStatus) IsTracking() bool {
	return s == StatusAccepted || s == StatusEnRoute || s == StatusPickedUp
}

// TrackingStatuses lists the statuses in which driver location is written.
func TrackingStatuses() []RideStatus {
	return []RideStatus{StatusAccepted, StatusEnRoute, StatusPickedUp}
}

// Label is the operator-facing wording of a status.
func (s RideStatus) Label() string {
	switch s {
	case StatusAccepted:
		return "Accepted"
	case StatusEnRoute:
		return "On the way to pickup"
	case StatusPickedUp:
		return "Patient picked up"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusPending:
		return "Pending"
	default:
		return string(s)
	}
}
