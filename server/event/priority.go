package event

// Priority controls the order in which handlers registered for the same event
// type are called. Handlers with a lower priority run first, so that handlers
// with a higher priority get the final say over the outcome of an event.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityHighest
	// PriorityMonitor handlers run last and should only observe the outcome of
	// an event, never modify it.
	PriorityMonitor
)

// String returns the lower case name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "lowest"
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityHighest:
		return "highest"
	case PriorityMonitor:
		return "monitor"
	}
	return "unknown"
}

// Cancellable is implemented by events that may be cancelled by a handler.
type Cancellable interface {
	Cancelled() bool
}

// Cancellation may be embedded in event types to make them cancellable.
type Cancellation struct {
	cancelled bool
}

// Cancel cancels the event.
func (c *Cancellation) Cancel() {
	c.cancelled = true
}

// SetCancelled sets the cancellation state of the event.
func (c *Cancellation) SetCancelled(cancelled bool) {
	c.cancelled = cancelled
}

// Cancelled reports if the event was cancelled.
func (c *Cancellation) Cancelled() bool {
	return c.cancelled
}
