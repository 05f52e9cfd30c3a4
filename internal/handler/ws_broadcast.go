package handler

// BroadcastRunEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastRunEvent(runID string, eventType string, data any) {
	h.BroadcastToRun(runID, WSEvent{
		Type:  eventType,
		RunID: runID,
		Data:  data,
	})
}
