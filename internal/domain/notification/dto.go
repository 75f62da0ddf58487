package notification

import "time"

// Event is a queued emission request. Emission is best effort: a failed or
// dropped event never affects the workflow transition that produced it.
type Event struct {
	ApplicationID string
	RecipientID   string
	SenderID      *string
	Type          EventType
	Title         string
	Message       string
	Data          map[string]interface{}
}

type Response struct {
	ID            string                 `json:"id"`
	ApplicationID string                 `json:"application_id"`
	Type          string                 `json:"type"`
	Title         string                 `json:"title"`
	Message       string                 `json:"message"`
	Data          map[string]interface{} `json:"data,omitempty"`
	IsRead        bool                   `json:"is_read"`
	ReadAt        *time.Time             `json:"read_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

type ListResponse struct {
	Notifications []Response `json:"notifications"`
	TotalCount    int        `json:"total_count"`
	UnreadCount   int        `json:"unread_count"`
}

type MarkAsReadRequest struct {
	IDs []string `json:"ids"`
}

// SSEEvent is pushed to live subscribers.
type SSEEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func ToResponse(n *Notification) Response {
	return Response{
		ID:            n.ID,
		ApplicationID: n.ApplicationID,
		Type:          string(n.Type),
		Title:         n.Title,
		Message:       n.Message,
		Data:          n.Data,
		IsRead:        n.IsRead,
		ReadAt:        n.ReadAt,
		CreatedAt:     n.CreatedAt,
	}
}
