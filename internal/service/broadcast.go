package service

// Round event types pushed to run subscribers.
const (
	EventRoundStarted   = "round_started"
	EventOffersResolved = "offers_resolved"
	EventRunCompleted   = "run_completed"
	EventRunFailed      = "run_failed"
)

// Broadcaster sends real-time run events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastRunEvent(runID string, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastRunEvent(string, string, any) {}
