package bus

import "time"

// Event kinds published by the daemon. Subscribers match on prefix, so
// "archive." receives every archive event.
const (
	KindStatusChanged   = "archive.status_changed"
	KindMessagesArrived = "archive.messages_arrived"
	KindRequest         = "api.request"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
