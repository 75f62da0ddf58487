package notification

import "context"

// Service defines the notification service interface
type Service interface {
	// Queue enqueues an event for async persistence and fan-out. It never
	// blocks and never returns an error to the caller.
	Queue(event Event)

	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*ListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error

	// Subscribe returns a live event stream for the user plus a cancel func.
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Stop drains the queue and stops the workers.
	Stop()
}
