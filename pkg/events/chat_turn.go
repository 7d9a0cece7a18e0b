package events

import "time"

// NewChatTurnCompleted describes one finished chat turn for downstream
// analytics: which session, which retrieval modality, how many products
// grounded the prompt and how many the model actually cited.
func NewChatTurnCompleted(turnId, sessionId, modality string, retrieved, cited int) Event {
	return BaseEvent{
		Type: "CHAT_TURN_COMPLETED",
		Data: map[string]interface{}{
			"turn_id":    turnId,
			"session_id": sessionId,
			"modality":   modality,
			"retrieved":  retrieved,
			"cited":      cited,
		},
		OccurredAt: time.Now(),
	}
}
