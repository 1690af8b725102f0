package model

import (
	"encoding/json"
	"time"
)

// Event is a single inbound webhook delivery. Type and DeliveryID come from the
// X-GitHub-Event and X-GitHub-Delivery headers and are empty when the sender
// omitted them. Payload is never interpreted beyond JSON well-formedness.
type Event struct {
	Type       string
	DeliveryID string
	Payload    json.RawMessage
	ReceivedAt time.Time
}

// Receipt records that an Event was accepted. ID correlates the log lines
// written for one delivery and is not persisted anywhere.
type Receipt struct {
	ID         string
	Event      string
	Delivery   string
	ReceivedAt time.Time
}
