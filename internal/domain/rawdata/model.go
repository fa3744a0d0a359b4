package rawdata

import "time"

// Payload is one raw provider response, archived for replay and debugging.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	PayloadJSON string
	PayloadHash string
	FetchedAt   *time.Time
}
