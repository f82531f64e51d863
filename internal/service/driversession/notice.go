package driversession

import (
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the operator.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

const (
	msgNewRequest        = "New ride request received!"
	msgAccepted          = "Ride accepted successfully!"
	msgEnRoute           = "Status updated: On the way to pickup"
	msgPickedUp          = "Status updated: Patient picked up"
	msgCompleted         = "Ride completed successfully!"
	msgRideCancelled     = "Current ride was cancelled by the user"
	msgPermissionDenied  = "Location permission denied. Please enable location services."
	msgTrackingStarted   = "Location tracking started"
	msgRefreshing        = "Refreshing ride requests..."
	msgAcceptFailed      = "Failed to accept ride"
	msgStatusFailed      = "Failed to update status"
	msgLoadFailed        = "Failed to load dashboard data"
	msgNoCurrentRide     = "No current ride"
	msgAlreadyHasRide    = "Finish the current ride before accepting another"
	msgInvalidTransition = "Invalid status transition"
)

func statusNotice(s types.RideStatus) string {
	switch s {
	case types.StatusEnRoute:
		return msgEnRoute
	case types.StatusPickedUp:
		return msgPickedUp
	case types.StatusCompleted:
		return msgCompleted
	default:
		return "Status updated: " + s.Label()
	}
}

// noticeLog keeps the most recent notices, oldest first.
type noticeLog struct {
	max   int
	items []Notice
}

func (l *noticeLog) add(n Notice) {
	l.items = append(l.items, n)
	if over := len(l.items) - l.max; over > 0 {
		l.items = append([]Notice(nil), l.items[over:]...)
	}
}

func (l *noticeLog) list() []Notice {
	return append([]Notice(nil), l.items...)
}
